package codegen

import _ "embed"

// FragmentTemplate is the top-level fragment shader. Sections are spliced in at
// `//%name//%` placeholders.
//
//go:embed glsl/frag.glsl
var FragmentTemplate string

// PredefinedLibrary is the fixed helper code every scene is generated against.
//
//go:embed glsl/library.glsl
var PredefinedLibrary string

// VertexShader is the fixed full-screen vertex stage.
//
//go:embed glsl/vert.glsl
var VertexShader string

// Section names referenced by FragmentTemplate.
const (
	SectionUniforms              = "uniforms"
	SectionTextures              = "textures"
	SectionMaterialsDefines      = "materials_defines"
	SectionMaterialProcessing    = "material_processing"
	SectionIntersectionFunctions = "intersection_functions"
	SectionIntersections         = "intersections"
	SectionLibrary               = "library"
	SectionPredefinedLibrary     = "predefined_library"
)
