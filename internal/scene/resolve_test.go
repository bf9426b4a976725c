package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadeweave/internal/diag"
)

func formulaScene() *Scene {
	return &Scene{Uniforms: []Uniform{
		{Name: "a", Kind: UniformFloat, Value: 2},
		{Name: "on", Kind: UniformBool, Value: 5},
		{Name: "n", Kind: UniformInt, Value: 3.7},
		{Name: "b", Kind: UniformFormula, Formula: "a * (n + 1) - -on"},
		{Name: "c", Kind: UniformFormula, Formula: "sqrt(b + 7) / 2 + sin(0)"},
		{Name: "loop1", Kind: UniformFormula, Formula: "loop2 + 1"},
		{Name: "loop2", Kind: UniformFormula, Formula: "loop1"},
		{Name: "lost", Kind: UniformFormula, Formula: "ghost * 2"},
		{Name: "bad", Kind: UniformFormula, Formula: "a +"},
		{Name: "angle", Kind: UniformAngle, Value: 0.25},
		{Name: "circle", Kind: UniformFormula, Formula: "2 * pi"},
	}}
}

func TestResolver_Values(t *testing.T) {
	r := NewResolver(formulaScene())

	assert.Equal(t, Result{Value: 2}, r.Get("a"))
	assert.Equal(t, Result{Value: 1}, r.Get("on"))
	assert.Equal(t, Result{Value: 3}, r.Get("n"))
	assert.Equal(t, Result{Value: 9}, r.Get("b"))
	assert.Equal(t, Result{Value: 2}, r.Get("c"))
	assert.Equal(t, Result{Value: 0.25}, r.Get("angle"))
	assert.InDelta(t, 2*math.Pi, r.Get("circle").Value, 1e-12)
}

func TestResolver_Failures(t *testing.T) {
	r := NewResolver(formulaScene())

	got := r.Get("loop1")
	assert.Equal(t, Recursion, got.Status)
	assert.Equal(t, "loop1", got.Name)

	got = r.Get("lost")
	assert.Equal(t, NotFound, got.Status)
	assert.Equal(t, "ghost", got.Name)

	got = r.Get("bad")
	assert.Equal(t, Invalid, got.Status)
	require.Error(t, got.Err)

	assert.Equal(t, Result{Status: NotFound, Name: "nope"}, r.Get("nope"))
}

func TestValidate_FormulaProblems(t *testing.T) {
	bag := diag.NewBag(0)
	ok := Validate(formulaScene(), diag.BagReporter{Bag: bag})
	assert.False(t, ok)
	assert.Equal(t, []diag.Code{
		diag.SceneRecursion,
		diag.SceneRecursion,
		diag.SceneUnknownUniform,
		diag.SceneBadFormula,
	}, codes(bag))
}
