package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridAtSet(t *testing.T) {
	g := New(3, 4, -1)
	assert.Equal(t, 3, g.Height())
	assert.Equal(t, 4, g.Width())
	assert.Equal(t, -1, g.At(2, 3))

	g.Set(2, 3, 7)
	assert.Equal(t, 7, g.At(2, 3))
}

func TestGridOutOfBoundsPanics(t *testing.T) {
	g := New(2, 2, 0)
	assert.Panics(t, func() { g.At(2, 0) })
	assert.Panics(t, func() { g.At(0, -1) })
	assert.Panics(t, func() { g.Set(-1, 0, 1) })
}

func TestGridNeighbors4(t *testing.T) {
	g := New(3, 3, 0)
	assert.Len(t, g.Neighbors4(0, 0), 2)
	assert.Len(t, g.Neighbors4(1, 1), 4)
	assert.Len(t, g.Neighbors4(2, 2), 2)
}
