package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadeweave/internal/diag"
	"shadeweave/internal/provenance"
)

func TestLoad_AllFormatsAgree(t *testing.T) {
	want, err := Load(filepath.Join("testdata", "demo.json"))
	require.NoError(t, err)

	require.Len(t, want.Materials, 2)
	assert.Equal(t, "vec3 c = vec3(1.);\nreturn c;", want.Materials[1].Code)
	require.NotNil(t, want.Objects[1].Portal)
	assert.Equal(t, Portal{A: "left", B: "right"}, *want.Objects[1].Portal)

	for _, name := range []string{"demo.yaml", "demo.toml"} {
		got, err := Load(filepath.Join("testdata", name))
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestDecode_UTF16WithBOM(t *testing.T) {
	text := `{"matrices":[{"name":"m"}]}`
	data := []byte{0xFF, 0xFE}
	for _, r := range text {
		data = append(data, byte(r), 0)
	}
	s, err := Decode(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []Matrix{{Name: "m"}}, s.Matrices)
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte(`{"materialz": []}`), FormatJSON)
	assert.Error(t, err)
	_, err = Decode([]byte("materialz: []\n"), FormatYAML)
	assert.Error(t, err)
	_, err = Decode([]byte("materialz = []\n"), FormatTOML)
	assert.Error(t, err)
}

func TestDecode_EmptyYAML(t *testing.T) {
	s, err := Decode(nil, FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, s.Materials)
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("a/b.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatOf("scene.txt")
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDerivedNames(t *testing.T) {
	assert.Equal(t, "t_u", UniformName("t"))
	assert.Equal(t, "floor_mat", MatrixName("floor"))
	assert.Equal(t, "floor_mat_inv", InverseMatrixName("floor"))
	assert.Equal(t, "left_to_right_mat", TeleportName("left", "right"))
	assert.Equal(t, "noise_tex", TextureName("noise"))
	assert.Equal(t, "glow_M", MaterialDefine("glow"))
	assert.Equal(t, "teleport_3_2_M", TeleportMaterialDefine(3, 2))
}

func validate(t *testing.T, s *Scene) (*diag.Bag, bool) {
	t.Helper()
	bag := diag.NewBag(0)
	ok := Validate(s, diag.BagReporter{Bag: bag})
	return bag, ok
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestValidate_DemoIsClean(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "demo.json"))
	require.NoError(t, err)
	bag, ok := validate(t, s)
	assert.True(t, ok)
	assert.Zero(t, bag.Len(), "%v", bag.Items())
}

func TestValidate_Problems(t *testing.T) {
	minV, maxV := 2.0, 1.0
	s := &Scene{
		Uniforms: []Uniform{
			{Name: "_camera", Kind: UniformFloat},
			{Name: "r", Kind: UniformFloat, Min: &minV, Max: &maxV},
			{Name: "f", Kind: UniformFormula},
			{Name: "q", Kind: "vector"},
		},
		Matrices: []Matrix{{Name: "m"}, {Name: "m"}},
		Objects: []Object{
			{Name: "a", Kind: ObjectFlat, Matrix: "nope", Code: "return 1;"},
			{Name: "b", Kind: ObjectComplex},
			{Name: "c", Kind: ObjectDebug, Portal: &Portal{A: "m", B: "m"}},
			{Name: "d", Kind: "sphere"},
		},
		Materials: []Material{
			{Name: "x", Kind: MaterialComplex},
			{Name: "bad name", Kind: MaterialSimple},
			{Name: "y", Kind: "glass"},
		},
		Library: []LibraryCode{{Name: "empty"}},
	}
	bag, ok := validate(t, s)
	assert.False(t, ok)
	assert.Equal(t, []diag.Code{
		diag.SceneReservedName,
		diag.SceneDuplicateName,
		diag.SceneBadName,
		diag.SceneBadRange,
		diag.SceneEmptyCode,
		diag.SceneBadKind,
		diag.SceneUnknownMatrix,
		diag.SceneMissingPlacement,
		diag.SceneEmptyCode,
		diag.SceneMissingPlacement,
		diag.SceneBadKind,
		diag.SceneEmptyCode,
		diag.SceneBadKind,
		diag.SceneEmptyCode,
	}, codes(bag))

	dup := bag.Items()[1]
	require.Len(t, dup.Notes, 1)
	assert.Equal(t, "first declared here", dup.Notes[0].Msg)

	last := bag.Items()[bag.Len()-1]
	assert.Equal(t, diag.SevWarning, last.Severity)
	assert.Equal(t, provenance.Library(0), last.Primary.Origin)
}

func TestValidate_ValueOutsideRangeIsWarning(t *testing.T) {
	lo, hi := 0.0, 1.0
	bag, ok := validate(t, &Scene{Uniforms: []Uniform{{Name: "t", Kind: UniformFloat, Value: 3, Min: &lo, Max: &hi}}})
	assert.True(t, ok)
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.SevWarning, bag.Items()[0].Severity)
}
