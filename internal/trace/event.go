package trace

import (
	"context"
	"time"

	"shadeweave/internal/provenance"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1
	ScopePass
	ScopeSection
	ScopeFragment
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeSection:
		return "section"
	case ScopeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64
	Name     string // e.g. "generate", "compile", "material#1"
	Detail   string
	Extra    map[string]string

	// Scene is the path of the scene the event belongs to, "" outside a scene.
	Scene string
	// Section is the template section being built.
	Section string
	// Fragment is set on fragment points; provenance.Default elsewhere.
	Fragment provenance.ID
}

// Point emits an instant event tagged with the scene and section of ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	f := frameOf(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: f.span,
		GID:      getGoroutineID(),
		Name:     name,
		Detail:   detail,
		Scene:    f.scene,
		Section:  f.section,
	})
}

// FragmentPoint records that the fragment id, authored under name, was placed
// into the section being built in ctx.
func FragmentPoint(ctx context.Context, id provenance.ID, name string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(ScopeFragment) {
		return
	}
	f := frameOf(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    ScopeFragment,
		ParentID: f.span,
		GID:      getGoroutineID(),
		Name:     id.String(),
		Detail:   name,
		Scene:    f.scene,
		Section:  f.section,
		Fragment: id,
	})
}
