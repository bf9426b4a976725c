package codegen

import (
	"slices"

	"shadeweave/internal/scene"
	"shadeweave/internal/shader"
)

// Builtin uniforms declared by FragmentTemplate and fed by the renderer.
var Builtins = []shader.Uniform{
	{Name: "_camera", Type: shader.Mat4},
	{Name: "_resolution", Type: shader.Float2},
	{Name: "_ray_tracing_depth", Type: shader.Int1},
	{Name: "_offset_after_material", Type: shader.Float1},
	{Name: "_view_angle", Type: shader.Float1},
	{Name: "_use_panini_projection", Type: shader.Int1},
	{Name: "_panini_param", Type: shader.Float1},
}

// Uniforms lists every uniform the generated program references: placement
// matrices (deduplicated, sorted), then user uniforms in scene order, then builtins.
func Uniforms(s *scene.Scene) []shader.Uniform {
	var mats []string
	both := func(m string) {
		mats = append(mats, scene.MatrixName(m), scene.InverseMatrixName(m))
	}
	for i := range s.Objects {
		o := &s.Objects[i]
		switch {
		case o.Kind == scene.ObjectDebug:
			both(o.Matrix)
		case o.IsPortal():
			a, b := o.Portal.A, o.Portal.B
			both(a)
			both(b)
			mats = append(mats, scene.TeleportName(a, b))
			if a != b {
				mats = append(mats, scene.TeleportName(b, a))
			}
		default:
			both(o.Matrix)
		}
	}
	slices.Sort(mats)
	mats = slices.Compact(mats)

	out := make([]shader.Uniform, 0, len(mats)+len(s.Uniforms)+len(Builtins))
	for _, m := range mats {
		out = append(out, shader.Uniform{Name: m, Type: shader.Mat4})
	}
	for _, u := range s.Uniforms {
		out = append(out, shader.Uniform{Name: scene.UniformName(u.Name), Type: uniformType(u.Kind)})
	}
	return append(out, Builtins...)
}

func uniformType(k scene.UniformKind) shader.UniformType {
	switch k {
	case scene.UniformBool, scene.UniformInt:
		return shader.Int1
	default:
		return shader.Float1
	}
}

// Textures lists sampler names in scene order.
func Textures(s *scene.Scene) []string {
	out := make([]string, len(s.Textures))
	for i, t := range s.Textures {
		out[i] = scene.TextureName(t.Name)
	}
	return out
}
