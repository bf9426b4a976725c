package codegen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"shadeweave/internal/provenance"
	"shadeweave/internal/scene"
	"shadeweave/internal/shader"
	"shadeweave/internal/source"
	"shadeweave/internal/trace"
)

// Output is one generation pass.
type Output struct {
	// Code is the composed fragment shader.
	Code string
	// Index maps fragment IDs to lines of Code.
	Index *provenance.Index
	// Program is Code plus the vertex stage and the resources it references.
	Program *shader.Program
	// Fragments holds the authored text behind every ID in Index.
	Fragments *source.FragmentSet
	// Generator is the Fingerprint of the generator that produced Code.
	Generator string
}

// Lines returns the number of lines in Code.
func (o *Output) Lines() int {
	return strings.Count(o.Code, "\n") + 1
}

// Generator composes shaders from a template. Empty fields fall back to the
// embedded defaults.
type Generator struct {
	Template string
	Library  string
	Vertex   string
	// Path is recorded on the fragment set for display.
	Path string
}

// Generate runs the default generator.
func Generate(s *scene.Scene) (*Output, error) {
	return Generator{}.Generate(s)
}

func (g Generator) Generate(s *scene.Scene) (*Output, error) {
	return g.GenerateContext(context.Background(), s)
}

// GenerateContext is Generate with section spans and fragment events sent to
// the tracer carried by ctx.
func (g Generator) GenerateContext(ctx context.Context, s *scene.Scene) (*Output, error) {
	if s == nil {
		return nil, errors.AssertionFailedf("nil scene")
	}
	tmpl := orDefault(g.Template, FragmentTemplate)

	p := &pass{ctx: ctx, scene: s, frags: source.NewFragmentSet(g.Path)}
	sections, err := p.sections(orDefault(g.Library, PredefinedLibrary))
	if err != nil {
		return nil, err
	}

	span, _ := trace.StartSpan(ctx, trace.ScopePass, "expand")
	b, err := provenance.Expand(tmpl, sections)
	if err != nil {
		span.End(err.Error())
		return nil, errors.Wrap(err, "expand fragment template")
	}
	span.WithExtra("ids", strconv.Itoa(b.Index().Len())).End("")

	code := b.String()
	return &Output{
		Code:  code,
		Index: b.Index(),
		Program: &shader.Program{
			Vertex:   orDefault(g.Vertex, VertexShader),
			Fragment: code,
			Uniforms: Uniforms(s),
			Textures: Textures(s),
		},
		Fragments: p.frags,
		Generator: g.Fingerprint(),
	}, nil
}

// Fingerprint identifies the effective template, library and vertex stage.
// Two generators with the same fingerprint lay out a scene identically.
func (g Generator) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{
		orDefault(g.Template, FragmentTemplate),
		orDefault(g.Library, PredefinedLibrary),
		orDefault(g.Vertex, VertexShader),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type pass struct {
	ctx   context.Context
	scene *scene.Scene
	frags *source.FragmentSet
}

type sectionFunc func(b *provenance.Builder) error

func (p *pass) sections(library string) (map[string]*provenance.Builder, error) {
	defines, processing := provenance.NewBuilder(), provenance.NewBuilder()
	// both material sections are built in one walk; the fragments land in processing
	err := p.inSection(SectionMaterialProcessing, func() error {
		return p.materials(defines, processing)
	})
	if err != nil {
		return nil, err
	}
	out := map[string]*provenance.Builder{
		SectionMaterialsDefines:   defines,
		SectionMaterialProcessing: processing,
	}

	build := []struct {
		name string
		fn   sectionFunc
	}{
		{SectionUniforms, p.uniforms},
		{SectionTextures, p.textures},
		{SectionIntersectionFunctions, p.intersectionFunctions},
		{SectionIntersections, p.intersections},
		{SectionLibrary, p.library},
		{SectionPredefinedLibrary, func(b *provenance.Builder) error {
			b.Append(library)
			return nil
		}},
	}
	for _, sec := range build {
		b := provenance.NewBuilder()
		if err := p.inSection(sec.name, func() error { return sec.fn(b) }); err != nil {
			return nil, errors.Wrapf(err, "section %s", sec.name)
		}
		out[sec.name] = b
	}
	return out, nil
}

// inSection runs fn with p.ctx inside a span for the named template section.
func (p *pass) inSection(name string, fn func() error) error {
	outer := p.ctx
	span, ctx := trace.StartSection(outer, name)
	p.ctx = ctx
	err := fn()
	p.ctx = outer
	span.EndErr(err)
	return err
}

// identified appends user code under id and records it for display.
func (p *pass) identified(b *provenance.Builder, id provenance.ID, name, code string) error {
	if err := b.AppendIdentified(id, code); err != nil {
		return err
	}
	p.frags.Add(id, name, code)
	trace.FragmentPoint(p.ctx, id, name)
	return nil
}

func (p *pass) uniforms(b *provenance.Builder) error {
	for _, u := range Uniforms(p.scene) {
		if strings.HasPrefix(u.Name, "_") {
			continue
		}
		b.Append(fmt.Sprintf("uniform %s %s;\n", u.Type.GLSL(), u.Name))
	}
	return nil
}

func (p *pass) textures(b *provenance.Builder) error {
	for _, name := range Textures(p.scene) {
		b.Append(fmt.Sprintf("uniform sampler2D %s;\n", name))
	}
	return nil
}

func (p *pass) materials(defines, processing *provenance.Builder) error {
	counter := 0
	define := func(name string) {
		defines.Append(fmt.Sprintf("#define %s (USER_MATERIAL_OFFSET + %d)\n", name, counter))
		counter++
	}
	branch := func(name string) {
		processing.Append(fmt.Sprintf("} else if (i.material == %s) {\n", name))
	}

	for pos := range p.scene.Materials {
		m := &p.scene.Materials[pos]
		name := scene.MaterialDefine(m.Name)
		define(name)
		branch(name)

		switch m.Kind {
		case scene.MaterialSimple:
			processing.Append(fmt.Sprintf("return material_simple(hit, r, %s, %s, %t, %s, %s);\n",
				vec3(m.Color), glslFloat(m.NormalCoef), m.Grid, glslFloat(m.GridScale), glslFloat(m.GridCoef)))
		case scene.MaterialReflect:
			processing.Append(fmt.Sprintf("return material_reflect(hit, r, %s);\n", vec3(m.AddToColor)))
		case scene.MaterialRefract:
			processing.Append(fmt.Sprintf("return material_refract(hit, r, %s, %s);\n",
				vec3(m.AddToColor), glslFloat(m.RefractiveIndex)))
		case scene.MaterialComplex:
			if err := p.identified(processing, provenance.Material(pos), m.Name, m.Code); err != nil {
				return err
			}
			processing.Append("\n")
		default:
			return errors.Newf("material %q: unknown kind %q", m.Name, m.Kind)
		}
	}

	for pos := range p.scene.Objects {
		o := &p.scene.Objects[pos]
		if o.Kind == scene.ObjectDebug || !o.IsPortal() {
			continue
		}
		first, second := scene.TeleportMaterialDefine(pos, 1), scene.TeleportMaterialDefine(pos, 2)
		define(first)
		define(second)

		branch(first)
		processing.Append(fmt.Sprintf("return material_teleport(hit, r, %s);\n", scene.TeleportName(o.Portal.A, o.Portal.B)))
		branch(second)
		processing.Append(fmt.Sprintf("return material_teleport(hit, r, %s);\n", scene.TeleportName(o.Portal.B, o.Portal.A)))
	}
	return nil
}

func (p *pass) intersectionFunctions(b *provenance.Builder) error {
	for pos := range p.scene.Objects {
		o := &p.scene.Objects[pos]
		switch o.Kind {
		case scene.ObjectDebug:
			continue
		case scene.ObjectFlat:
			if o.IsPortal() {
				b.Append(fmt.Sprintf("int is_inside_%d(vec4 pos, float x, float y, bool back, bool first) {\n", pos))
			} else {
				b.Append(fmt.Sprintf("int is_inside_%d(vec4 pos, float x, float y) {\n", pos))
			}
		case scene.ObjectComplex:
			if o.IsPortal() {
				b.Append(fmt.Sprintf("SceneIntersection intersect_%d(Ray r, bool first) {\n", pos))
			} else {
				b.Append(fmt.Sprintf("SceneIntersection intersect_%d(Ray r) {\n", pos))
			}
		default:
			return errors.Newf("object %q: unknown kind %q", o.Name, o.Kind)
		}
		if err := p.identified(b, provenance.Object(pos), o.Name, o.Code); err != nil {
			return err
		}
		b.Append("\n}\n")
	}
	return nil
}

func (p *pass) intersections(b *provenance.Builder) error {
	transformed := func(m string) {
		b.Append(fmt.Sprintf("transformed_ray = transform(%s, r);\nlen = length(transformed_ray.d);\ntransformed_ray.d = normalize(transformed_ray.d);\n",
			scene.InverseMatrixName(m)))
	}

	for pos := range p.scene.Objects {
		o := &p.scene.Objects[pos]
		switch {
		case o.Kind == scene.ObjectDebug:
			transformed(o.Matrix)
			b.Append("ihit = debug_intersect(transformed_ray);\nihit.hit.t /= len;\n")
			b.Append(fmt.Sprintf("if (nearer(i, ihit)) { i = ihit; i.hit.n = normalize((%s * vec4(i.hit.n, 0.)).xyz); }\n\n",
				scene.MatrixName(o.Matrix)))

		case o.Kind == scene.ObjectFlat && !o.IsPortal():
			b.Append(fmt.Sprintf("hit = plane_intersect(r, %s, get_normal(%s));\n",
				scene.InverseMatrixName(o.Matrix), scene.MatrixName(o.Matrix)))
			b.Append(fmt.Sprintf("if (nearer(i, hit)) { i = process_plane_intersection(i, hit, is_inside_%d(r.o + r.d * hit.t, hit.u, hit.v)); }\n\n", pos))

		case o.Kind == scene.ObjectFlat:
			side := func(m string, first bool, material string) {
				sign := ""
				if first {
					sign = "-"
				}
				b.Append(fmt.Sprintf("normal = %sget_normal(%s);\n", sign, scene.MatrixName(m)))
				b.Append(fmt.Sprintf("hit = plane_intersect(r, %s, normal);\n", scene.InverseMatrixName(m)))
				b.Append(fmt.Sprintf("if (nearer(i, hit)) { i = process_portal_intersection(i, hit, is_inside_%d(r.o + r.d * hit.t, hit.u, hit.v, is_collinear(hit.n, normal), %t), %s); }\n\n",
					pos, first, material))
			}
			side(o.Portal.A, true, scene.TeleportMaterialDefine(pos, 1))
			side(o.Portal.B, false, scene.TeleportMaterialDefine(pos, 2))

		case o.Kind == scene.ObjectComplex && !o.IsPortal():
			transformed(o.Matrix)
			b.Append(fmt.Sprintf("ihit = intersect_%d(transformed_ray);\nihit.hit.t /= len;\n", pos))
			b.Append(fmt.Sprintf("if (nearer(i, ihit)) { i = ihit; i.hit.n = normalize((%s * vec4(i.hit.n, 0.)).xyz); }\n\n",
				scene.MatrixName(o.Matrix)))

		case o.Kind == scene.ObjectComplex:
			side := func(m string, first bool, material string) {
				transformed(m)
				b.Append(fmt.Sprintf("ihit = intersect_%d(transformed_ray, %t);\nihit.hit.t /= len;\n", pos, first))
				b.Append(fmt.Sprintf("if (nearer(i, ihit) && ihit.material != NOT_INSIDE) { if (ihit.material == TELEPORT) { ihit.material = %s; } i = ihit; i.hit.n = normalize((%s * vec4(i.hit.n, 0.)).xyz); }\n\n",
					material, scene.MatrixName(m)))
			}
			side(o.Portal.A, true, scene.TeleportMaterialDefine(pos, 1))
			side(o.Portal.B, false, scene.TeleportMaterialDefine(pos, 2))

		default:
			return errors.Newf("object %q: unknown kind %q", o.Name, o.Kind)
		}
		b.Append("\n")
	}
	return nil
}

func (p *pass) library(b *provenance.Builder) error {
	for pos := range p.scene.Library {
		l := &p.scene.Library[pos]
		if err := p.identified(b, provenance.Library(pos), l.Name, l.Code); err != nil {
			return err
		}
		// terminated so the next entry starts on a line of its own
		b.Append("\n")
	}
	return nil
}

// glslFloat renders f as a GLSL float literal in exponent form.
func glslFloat(f float64) string {
	return strconv.FormatFloat(f, 'e', -1, 64)
}

func vec3(v [3]float64) string {
	return fmt.Sprintf("vec3(%s, %s, %s)", glslFloat(v[0]), glslFloat(v[1]), glslFloat(v[2]))
}
