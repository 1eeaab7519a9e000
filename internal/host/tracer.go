package host

import (
	"github.com/sirupsen/logrus"
)

// SearchPosition describes the state of the search at a traced point: the
// currently assigned decision literals and, when present, the conflicting
// reason.
type SearchPosition interface {
	// Decisions returns the literals decided (not merely propagated) on
	// the current trail, outermost first.
	Decisions() []Lit
	// Conflict returns the reason literals of the most recent conflict,
	// or nil outside of conflict handling.
	Conflict() []Lit
}

// Tracer observes the search. Trace is called at every decision and at
// every conflict.
type Tracer interface {
	Trace(p SearchPosition)
}

// DefaultTracer is a no-op Tracer.
type DefaultTracer struct{}

func (DefaultTracer) Trace(SearchPosition) {}

// LoggingTracer logs each decision/conflict at Debug level through logrus.
type LoggingTracer struct {
	Logger *logrus.Logger
}

func (t LoggingTracer) Trace(p SearchPosition) {
	logger := t.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if c := p.Conflict(); c != nil {
		logger.WithField("reason", c).Debug("host: conflict")
		return
	}
	logger.WithField("decisions", p.Decisions()).Debug("host: decide")
}

type searchPosition struct {
	decisions []Lit
	conflict  []Lit
}

func (s searchPosition) Decisions() []Lit { return s.decisions }
func (s searchPosition) Conflict() []Lit  { return s.conflict }
