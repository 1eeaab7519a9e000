package grid

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBuildGroupInfoTotality(t *testing.T) {
	// 3x3 grid, two groups plus one unlabeled cell:
	// 0 0 -1
	// 0 1  1
	// -1 1 1
	ids := New(3, 3, -1)
	ids.Set(0, 0, 0)
	ids.Set(0, 1, 0)
	ids.Set(1, 0, 0)
	ids.Set(1, 1, 1)
	ids.Set(1, 2, 1)
	ids.Set(2, 1, 1)
	ids.Set(2, 2, 1)

	info := BuildGroupInfo(ids, 2)
	assert.Equal(t, 2, info.NumGroups())

	total := 0
	for id := 0; id < info.NumGroups(); id++ {
		total += info.GroupSize(id)
		for _, p := range info.Group(id) {
			assert.Equal(t, id, info.GroupID(p.Y, p.X))
		}
	}
	assert.Equal(t, 7, total)

	group0 := append([]Point{}, info.Group(0)...)
	sort.Slice(group0, func(i, j int) bool {
		if group0[i].Y != group0[j].Y {
			return group0[i].Y < group0[j].Y
		}
		return group0[i].X < group0[j].X
	})
	want := []Point{{0, 0}, {0, 1}, {1, 0}}
	if diff := cmp.Diff(want, group0); diff != "" {
		t.Errorf("group 0 mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGroupInfoEmpty(t *testing.T) {
	ids := New(2, 2, -1)
	info := BuildGroupInfo(ids, 0)
	assert.Equal(t, 0, info.NumGroups())
}
