package host

import "time"

// Option configures a Host at construction time.
type Option func(*Host)

// WithTracer installs a Tracer observing every decision and conflict.
func WithTracer(t Tracer) Option {
	return func(h *Host) {
		h.tracer = t
	}
}

// WithMaxConflicts bounds the number of conflicts Solve will tolerate
// before giving up and returning Incomplete, mirroring the stop-condition
// idiom of other_examples' yass Solver.Options (MaxConflicts/Timeout),
// generalized here to the host's own conflict counter.
func WithMaxConflicts(n int) Option {
	return func(h *Host) {
		h.maxConflicts = n
	}
}

// WithTimeout bounds wall-clock search time; Solve checks ctx.Done() at
// decision points, so a zero timeout (the default) means "no deadline
// beyond what the caller's context imposes."
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

var defaults = []Option{
	WithTracer(DefaultTracer{}),
}
