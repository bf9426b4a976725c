package trace

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return globalSeq.Add(1)
}

func nextSpanID() uint64 {
	return globalSpans.Add(1)
}

// getGoroutineID parses the ID out of the "goroutine 123 [running]:" stack
// header. Chrome output uses it as the thread row so parallel scenes of a check
// do not stack on one track.
func getGoroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf, ok := bytes.CutPrefix(buf, []byte("goroutine "))
	if !ok {
		return 0
	}
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}
	gid, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span brackets one pipeline step: a recompile, a pass such as generate or
// compile, or one template section.
type Span struct {
	tracer  Tracer
	id      uint64
	frame   frame // the frame the span was opened in
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

var nopSpan = &Span{tracer: Nop}

// Begin starts a span under parent (0 for a root span) without a context.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, frame{span: parent})
}

func begin(t Tracer, scope Scope, name string, f frame) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return nopSpan
	}
	s := &Span{
		tracer:  t,
		id:      nextSpanID(),
		frame:   f,
		gid:     getGoroutineID(),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.frame.span,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
		Scene:    s.frame.scene,
		Section:  s.frame.section,
	}
	if s.scope == ScopeSection {
		ev.Section = s.name
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End emits the end event and returns how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// EndErr ends the span with err's message as detail, or none when err is nil.
func (s *Span) EndErr(err error) time.Duration {
	if err != nil {
		return s.End(err.Error())
	}
	return s.End("")
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for spans below the tracer level.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// StartSpan opens a span under the tracer and span found in ctx. The returned
// context carries the new span as parent together with the scene and section
// already recorded in ctx.
func StartSpan(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	f := frameOf(ctx)
	s := begin(FromContext(ctx), scope, name, f)
	if s.id == 0 {
		return s, ctx
	}
	f.span = s.id
	return s, withFrame(ctx, f)
}

// StartSection opens a section span. Fragments recorded under the returned
// context are tagged with the section name even when the span itself is below
// the tracer level.
func StartSection(ctx context.Context, name string) (*Span, context.Context) {
	s, ctx := StartSpan(ctx, ScopeSection, name)
	f := frameOf(ctx)
	f.section = name
	return s, withFrame(ctx, f)
}
