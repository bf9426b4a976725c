// Package shader describes a generated GPU program and the compiler that accepts it.
package shader

import (
	"crypto/sha256"
	"encoding/hex"
)

// UniformType is the value kind of a uniform as seen by the GPU.
type UniformType uint8

const (
	Mat4 UniformType = iota
	Float1
	Float2
	Int1
)

// GLSL returns the GLSL type name.
func (t UniformType) GLSL() string {
	switch t {
	case Mat4:
		return "mat4"
	case Float1:
		return "float"
	case Float2:
		return "vec2"
	case Int1:
		return "int"
	}
	return "unknown"
}

func (t UniformType) String() string {
	return t.GLSL()
}

// Uniform is one uniform declaration the program expects to be fed.
type Uniform struct {
	Name string      `json:"name" msgpack:"name"`
	Type UniformType `json:"type" msgpack:"type"`
}

// Program is a vertex/fragment pair plus the resources its declarations reference.
type Program struct {
	Vertex   string    `json:"vertex" msgpack:"vertex"`
	Fragment string    `json:"fragment" msgpack:"fragment"`
	Uniforms []Uniform `json:"uniforms" msgpack:"uniforms"`
	Textures []string  `json:"textures" msgpack:"textures"`
}

// Fingerprint identifies the program source.
func (p *Program) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(p.Vertex))
	h.Write([]byte{0})
	h.Write([]byte(p.Fragment))
	return hex.EncodeToString(h.Sum(nil))
}
