// Package scene holds the authored scene document: the named entities whose
// code fragments are composed into one fragment shader.
package scene

// Scene is the document users edit. Collection order is significant: the
// position of an entity in its collection becomes its fragment ID.
type Scene struct {
	Description string        `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Uniforms    []Uniform     `json:"uniforms,omitempty" yaml:"uniforms,omitempty" toml:"uniforms,omitempty"`
	Matrices    []Matrix      `json:"matrices,omitempty" yaml:"matrices,omitempty" toml:"matrices,omitempty"`
	Objects     []Object      `json:"objects,omitempty" yaml:"objects,omitempty" toml:"objects,omitempty"`
	Materials   []Material    `json:"materials,omitempty" yaml:"materials,omitempty" toml:"materials,omitempty"`
	Textures    []Texture     `json:"textures,omitempty" yaml:"textures,omitempty" toml:"textures,omitempty"`
	Library     []LibraryCode `json:"library,omitempty" yaml:"library,omitempty" toml:"library,omitempty"`
}

type UniformKind string

const (
	UniformBool    UniformKind = "bool"
	UniformInt     UniformKind = "int"
	UniformFloat   UniformKind = "float"
	UniformAngle   UniformKind = "angle"
	UniformFormula UniformKind = "formula"
)

// Uniform is a user value fed to the shader as `<name>_u`.
type Uniform struct {
	Name    string      `json:"name" yaml:"name" toml:"name"`
	Kind    UniformKind `json:"kind" yaml:"kind" toml:"kind"`
	Value   float64     `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Min     *float64    `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max     *float64    `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
	Formula string      `json:"formula,omitempty" yaml:"formula,omitempty" toml:"formula,omitempty"`
}

// Matrix is a named transform; the shader sees `<name>_mat` and `<name>_mat_inv`.
type Matrix struct {
	Name string `json:"name" yaml:"name" toml:"name"`
}

type ObjectKind string

const (
	ObjectDebug   ObjectKind = "debug"
	ObjectFlat    ObjectKind = "flat"
	ObjectComplex ObjectKind = "complex"
)

// Portal connects two placements; rays entering one leave through the other.
type Portal struct {
	A string `json:"a" yaml:"a" toml:"a"`
	B string `json:"b" yaml:"b" toml:"b"`
}

// Object is placed either by one matrix or as a portal pair. Flat objects carry an
// `is_inside` body, complex objects an `intersect` body.
type Object struct {
	Name   string     `json:"name" yaml:"name" toml:"name"`
	Kind   ObjectKind `json:"kind" yaml:"kind" toml:"kind"`
	Matrix string     `json:"matrix,omitempty" yaml:"matrix,omitempty" toml:"matrix,omitempty"`
	Portal *Portal    `json:"portal,omitempty" yaml:"portal,omitempty" toml:"portal,omitempty"`
	Code   string     `json:"code,omitempty" yaml:"code,omitempty" toml:"code,omitempty"`
}

// IsPortal reports whether the object is placed as a portal pair.
func (o *Object) IsPortal() bool {
	return o.Portal != nil
}

type MaterialKind string

const (
	MaterialSimple  MaterialKind = "simple"
	MaterialReflect MaterialKind = "reflect"
	MaterialRefract MaterialKind = "refract"
	MaterialComplex MaterialKind = "complex"
)

type Material struct {
	Name            string       `json:"name" yaml:"name" toml:"name"`
	Kind            MaterialKind `json:"kind" yaml:"kind" toml:"kind"`
	Color           [3]float64   `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	NormalCoef      float64      `json:"normal_coef,omitempty" yaml:"normal_coef,omitempty" toml:"normal_coef,omitempty"`
	Grid            bool         `json:"grid,omitempty" yaml:"grid,omitempty" toml:"grid,omitempty"`
	GridScale       float64      `json:"grid_scale,omitempty" yaml:"grid_scale,omitempty" toml:"grid_scale,omitempty"`
	GridCoef        float64      `json:"grid_coef,omitempty" yaml:"grid_coef,omitempty" toml:"grid_coef,omitempty"`
	AddToColor      [3]float64   `json:"add_to_color,omitempty" yaml:"add_to_color,omitempty" toml:"add_to_color,omitempty"`
	RefractiveIndex float64      `json:"refractive_index,omitempty" yaml:"refractive_index,omitempty" toml:"refractive_index,omitempty"`
	Code            string       `json:"code,omitempty" yaml:"code,omitempty" toml:"code,omitempty"`
}

type Texture struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Path string `json:"path" yaml:"path" toml:"path"`
}

// LibraryCode is free-form GLSL shared by all fragments.
type LibraryCode struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Code string `json:"code" yaml:"code" toml:"code"`
}
