package trace

import "context"

type tracerKey struct{}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil t is stored as Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// frame is what nested work inherits from the enclosing span: the span to hang
// under, the scene being recompiled and the template section being built.
type frame struct {
	span    uint64
	scene   string
	section string
}

type frameKey struct{}

func frameOf(ctx context.Context) frame {
	if ctx == nil {
		return frame{}
	}
	f, _ := ctx.Value(frameKey{}).(frame)
	return f
}

func withFrame(ctx context.Context, f frame) context.Context {
	return context.WithValue(ctx, frameKey{}, f)
}

// WithScene marks ctx as working on the scene at path. Every span and point
// started under it is tagged with the path, so interleaved scenes of a
// parallel check can be told apart.
func WithScene(ctx context.Context, path string) context.Context {
	f := frameOf(ctx)
	f.scene = path
	return withFrame(ctx, f)
}

// SceneOf returns the scene path recorded in ctx.
func SceneOf(ctx context.Context) string {
	return frameOf(ctx).scene
}

// ParentSpan returns the ID of the innermost span started under ctx, 0 at the root.
func ParentSpan(ctx context.Context) uint64 {
	return frameOf(ctx).span
}
