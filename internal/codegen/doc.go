// Package codegen generates the fragment shader for a scene.
//
// Each template section is built by its own provenance.Builder. Plain
// declarations (uniforms, textures, material defines) carry no identifiers;
// every piece of user-written code is appended under an ID derived from its
// entity kind and collection position, so compiler diagnostics can be mapped
// back to it. The sections are then expanded into FragmentTemplate.
package codegen
