package codegen

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadeweave/internal/backmap"
	"shadeweave/internal/provenance"
	"shadeweave/internal/scene"
	"shadeweave/internal/shader"
	"shadeweave/internal/testkit"
	"shadeweave/internal/trace"
)

func demoScene() *scene.Scene {
	return &scene.Scene{
		Uniforms: []scene.Uniform{
			{Name: "t", Kind: scene.UniformFloat, Value: 0.5},
			{Name: "show_grid", Kind: scene.UniformBool, Value: 1},
		},
		Matrices: []scene.Matrix{{Name: "floor"}, {Name: "left"}, {Name: "right"}, {Name: "probe"}},
		Objects: []scene.Object{
			{Name: "ground", Kind: scene.ObjectFlat, Matrix: "floor", Code: "return inside(x, y);"},
			{Name: "gate", Kind: scene.ObjectFlat, Portal: &scene.Portal{A: "left", B: "right"}, Code: "if (back) {\n  return TELEPORT;\n}\nreturn INSIDE;"},
			{Name: "ball", Kind: scene.ObjectComplex, Matrix: "floor", Code: "return sphere(r);"},
			{Name: "axis", Kind: scene.ObjectDebug, Matrix: "probe"},
		},
		Materials: []scene.Material{
			{Name: "chalk", Kind: scene.MaterialSimple, Color: [3]float64{0.9, 0.9, 0.9}, NormalCoef: 0.5, Grid: true, GridScale: 4, GridCoef: 0.1},
			{Name: "glow", Kind: scene.MaterialComplex, Code: "vec3 c = vec3(1.);\nreturn material_final(c);"},
			{Name: "mirror", Kind: scene.MaterialReflect, AddToColor: [3]float64{1, 1, 1}},
		},
		Textures: []scene.Texture{{Name: "noise", Path: "noise.png"}},
		Library:  []scene.LibraryCode{{Name: "helpers", Code: "float sq(float x) {\n  return x * x;\n}"}, {Name: "more", Code: "float cube(float x) { return x * x * x; }"}},
	}
}

func TestGenerate_FragmentsLandOnRecordedLines(t *testing.T) {
	out, err := Generate(demoScene())
	require.NoError(t, err)

	ids := make([]provenance.ID, 0)
	for id := range out.Index.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, []provenance.ID{
		provenance.Material(1),
		provenance.Object(0), provenance.Object(1), provenance.Object(2),
		provenance.Library(0), provenance.Library(1),
	}, ids)

	codeLines := strings.Split(out.Code, "\n")
	for id, lines := range out.Index.All() {
		frag, ok := out.Fragments.Get(id)
		require.True(t, ok, id.String())
		fragLines := strings.Split(frag.Text, "\n")
		assert.Equal(t, len(fragLines), lines.Len(), id.String())
		for k, want := range fragLines {
			assert.Equal(t, want, codeLines[lines.Start-1+k], "%s line %d", id, k+1)
		}
	}
	assert.Equal(t, len(codeLines), out.Lines())
}

func TestGenerate_BackMapsCompilerLines(t *testing.T) {
	out, err := Generate(demoScene())
	require.NoError(t, err)

	glow, ok := out.Index.Get(provenance.Material(1))
	require.True(t, ok)
	gate, ok := out.Index.Get(provenance.Object(1))
	require.True(t, ok)

	b := backmap.Map(out.Index, []backmap.Raw{
		backmap.At(glow.Start+1, "'material_final' : no matching overloaded function found"),
		backmap.At(gate.Start+2, "'}' : syntax error"),
		backmap.At(1, "'#version' : bad profile"),
	})
	assert.Equal(t, []backmap.Local{{Line: 2, Message: "'material_final' : no matching overloaded function found"}}, b[provenance.Material(1)])
	assert.Equal(t, []backmap.Local{{Line: 3, Message: "'}' : syntax error"}}, b[provenance.Object(1)])
	assert.Equal(t, []backmap.Local{{Line: 1, Message: "'#version' : bad profile"}}, b.Unattributed())
}

func TestGenerate_Scaffolding(t *testing.T) {
	out, err := Generate(demoScene())
	require.NoError(t, err)

	for _, want := range []string{
		"uniform mat4 floor_mat;\n",
		"uniform float t_u;\n",
		"uniform int show_grid_u;\n",
		"uniform sampler2D noise_tex;\n",
		"#define chalk_M (USER_MATERIAL_OFFSET + 0)\n",
		"#define glow_M (USER_MATERIAL_OFFSET + 1)\n",
		"#define mirror_M (USER_MATERIAL_OFFSET + 2)\n",
		"#define teleport_1_1_M (USER_MATERIAL_OFFSET + 3)\n",
		"#define teleport_1_2_M (USER_MATERIAL_OFFSET + 4)\n",
		"} else if (i.material == chalk_M) {\nreturn material_simple(hit, r, vec3(9e-01, 9e-01, 9e-01), 5e-01, true, 4e+00, 1e-01);\n",
		"return material_reflect(hit, r, vec3(1e+00, 1e+00, 1e+00));\n",
		"} else if (i.material == teleport_1_2_M) {\nreturn material_teleport(hit, r, right_to_left_mat);\n",
		"int is_inside_0(vec4 pos, float x, float y) {\n",
		"int is_inside_1(vec4 pos, float x, float y, bool back, bool first) {\n",
		"SceneIntersection intersect_2(Ray r) {\n",
		"ihit = debug_intersect(transformed_ray);\n",
		"normal = -get_normal(left_mat);\n",
		"float sq(float x) {\n",
	} {
		assert.Contains(t, out.Code, want)
	}
	assert.NotContains(t, out.Code, "//%")
	assert.NotContains(t, out.Code, "uniform float _view_angle;\nuniform float _view_angle;")
	assert.Equal(t, VertexShader, out.Program.Vertex)
	assert.Equal(t, out.Code, out.Program.Fragment)
	assert.Equal(t, []string{"noise_tex"}, out.Program.Textures)
}

func TestUniforms_Order(t *testing.T) {
	got := Uniforms(demoScene())
	var names []string
	for _, u := range got[:10] {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{
		"floor_mat", "floor_mat_inv",
		"left_mat", "left_mat_inv", "left_to_right_mat",
		"probe_mat", "probe_mat_inv",
		"right_mat", "right_mat_inv", "right_to_left_mat",
	}, names)
	assert.Equal(t, shader.Uniform{Name: "t_u", Type: shader.Float1}, got[10])
	assert.Equal(t, shader.Uniform{Name: "show_grid_u", Type: shader.Int1}, got[11])
	assert.Equal(t, Builtins, got[12:])
}

func TestUniforms_SelfPortalHasOneTeleport(t *testing.T) {
	s := &scene.Scene{Objects: []scene.Object{{Name: "loop", Kind: scene.ObjectComplex, Portal: &scene.Portal{A: "m", B: "m"}, Code: "x"}}}
	got := Uniforms(s)
	assert.Equal(t, []shader.Uniform{
		{Name: "m_mat", Type: shader.Mat4},
		{Name: "m_mat_inv", Type: shader.Mat4},
		{Name: "m_to_m_mat", Type: shader.Mat4},
	}, got[:3])
	assert.Len(t, got, 3+len(Builtins))
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(demoScene())
	require.NoError(t, err)
	b, err := Generate(demoScene())
	require.NoError(t, err)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Index.Entries(), b.Index.Entries())
}

func TestGenerate_TemplateMismatch(t *testing.T) {
	_, err := Generator{Template: "//%uniforms//%\n"}.Generate(demoScene())
	require.Error(t, err)
	assert.True(t, errors.Is(err, provenance.ErrTemplate))

	var te *provenance.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, provenance.UnusedSection, te.Reason)
}

func TestGenerate_EmptyScene(t *testing.T) {
	out, err := Generate(&scene.Scene{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Index.Len())
	assert.Equal(t, 0, out.Fragments.Len())
	assert.Len(t, out.Program.Uniforms, len(Builtins))
}

func TestGenerate_RejectsUnknownKinds(t *testing.T) {
	_, err := Generate(&scene.Scene{Materials: []scene.Material{{Name: "x", Kind: "glass"}}})
	assert.Error(t, err)
	_, err = Generate(nil)
	assert.Error(t, err)
}

func TestGenerateContext_TracesSectionsAndFragments(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	out, err := Generator{}.GenerateContext(ctx, demoScene())
	require.NoError(t, err)

	var sections, fragments []string
	homes := map[provenance.ID]string{}
	expanded := false
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindSpanBegin && ev.Scope == trace.ScopeSection:
			sections = append(sections, ev.Name)
		case ev.Kind == trace.KindPoint && ev.Scope == trace.ScopeFragment:
			fragments = append(fragments, ev.Name+"="+ev.Detail)
			homes[ev.Fragment] = ev.Section
		case ev.Kind == trace.KindSpanEnd && ev.Name == "expand":
			expanded = true
			assert.Equal(t, strconv.Itoa(out.Index.Len()), ev.Extra["ids"])
		}
	}
	assert.True(t, expanded)
	assert.Contains(t, sections, SectionIntersectionFunctions)
	assert.Contains(t, sections, SectionLibrary)
	assert.Contains(t, fragments, "material#1=glow")
	assert.Contains(t, fragments, "library#0=helpers")
	assert.Len(t, fragments, out.Index.Len())
	assert.Equal(t, map[provenance.ID]string{
		provenance.Material(1): SectionMaterialProcessing,
		provenance.Object(0):   SectionIntersectionFunctions,
		provenance.Object(1):   SectionIntersectionFunctions,
		provenance.Object(2):   SectionIntersectionFunctions,
		provenance.Library(0):  SectionLibrary,
		provenance.Library(1):  SectionLibrary,
	}, homes)
}

func TestGenerate_IndexInvariants(t *testing.T) {
	out, err := Generate(demoScene())
	require.NoError(t, err)
	require.NoError(t, testkit.CheckIndex(out.Code, out.Index, out.Fragments))
}

func TestGenerator_Fingerprint(t *testing.T) {
	base := Generator{}.Fingerprint()
	assert.Equal(t, base, Generator{Template: FragmentTemplate, Path: "elsewhere.json"}.Fingerprint())
	assert.NotEqual(t, base, Generator{Template: "//\n" + FragmentTemplate}.Fingerprint())
	assert.NotEqual(t, base, Generator{Library: "float k;\n"}.Fingerprint())
	assert.NotEqual(t, base, Generator{Vertex: "void main() {}\n"}.Fingerprint())

	out, err := Generate(demoScene())
	require.NoError(t, err)
	assert.Equal(t, base, out.Generator)
}

func TestGenerate_LibraryAndTeleportLinesAreTerminated(t *testing.T) {
	out, err := Generate(demoScene())
	require.NoError(t, err)

	// consecutive library entries never share a line
	assert.Contains(t, out.Code, "float sq(float x) {\n  return x * x;\n}\nfloat cube(float x) { return x * x * x; }\n")
	first, ok := out.Index.Get(provenance.Library(0))
	require.True(t, ok)
	second, ok := out.Index.Get(provenance.Library(1))
	require.True(t, ok)
	assert.Equal(t, first.End, second.Start)
	assert.Equal(t, 3, first.Len())
	assert.Equal(t, 1, second.Len())

	// both portal sides dispatch on lines of their own
	assert.Contains(t, out.Code,
		"} else if (i.material == teleport_1_1_M) {\nreturn material_teleport(hit, r, left_to_right_mat);\n"+
			"} else if (i.material == teleport_1_2_M) {\nreturn material_teleport(hit, r, right_to_left_mat);\n")
}
