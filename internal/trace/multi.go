package trace

import "github.com/cockroachdb/errors"

// MultiTracer fans out trace events to multiple tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

// Emit hands each tracer its own copy so per-tracer sequence numbers do not race.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	var errs error
	for _, tr := range t.tracers {
		errs = errors.CombineErrors(errs, tr.Flush())
	}
	return errs
}

func (t *MultiTracer) Close() error {
	var errs error
	for _, tr := range t.tracers {
		errs = errors.CombineErrors(errs, tr.Close())
	}
	return errs
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
