package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Scene document
	SceneInfo             Code = 1000
	SceneDuplicateName    Code = 1001
	SceneEmptyName        Code = 1002
	SceneUnknownMatrix    Code = 1003
	SceneEmptyCode        Code = 1004
	SceneBadKind          Code = 1005
	SceneReservedName     Code = 1006
	SceneMissingPlacement Code = 1007
	SceneBadRange         Code = 1008
	SceneBadName          Code = 1009
	SceneUnknownUniform   Code = 1010
	SceneRecursion        Code = 1011
	SceneBadFormula       Code = 1012
	SceneNormalizedCRLF   Code = 1013
	SceneStrippedBOM      Code = 1014

	// Shader compiler output
	ShaderInfo         Code = 2000
	ShaderError        Code = 2001
	ShaderWarning      Code = 2002
	ShaderUnattributed Code = 2003
	ShaderUnparsed     Code = 2004
	ShaderLink         Code = 2005

	// Generation
	GenInfo     Code = 3000
	GenTemplate Code = 3001
	GenConflict Code = 3002

	// Filesystem and tooling
	IOLoadSceneFailed Code = 4001
	IOCompilerMissing Code = 4002
	IOCompilerTimeout Code = 4003
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	SceneInfo:             "Scene information",
	SceneDuplicateName:    "Duplicate entity name",
	SceneEmptyName:        "Entity has no name",
	SceneUnknownMatrix:    "Reference to an undeclared matrix",
	SceneEmptyCode:        "Fragment has no code",
	SceneBadKind:          "Unknown entity kind",
	SceneReservedName:     "Name is reserved for builtin uniforms",
	SceneMissingPlacement: "Object has neither matrix nor portal",
	SceneBadRange:         "Uniform value is outside its range",
	SceneBadName:          "Name is not a valid GLSL identifier",
	SceneUnknownUniform:   "Reference to an undeclared uniform",
	SceneRecursion:        "Formula depends on itself",
	SceneBadFormula:       "Formula cannot be parsed",
	SceneNormalizedCRLF:   "Line endings were converted to LF",
	SceneStrippedBOM:      "Byte order mark was removed",

	ShaderInfo:         "Shader compiler information",
	ShaderError:        "Shader compile error",
	ShaderWarning:      "Shader compile warning",
	ShaderUnattributed: "Diagnostic outside any authored fragment",
	ShaderUnparsed:     "Compiler message without location",
	ShaderLink:         "Shader link error",

	GenInfo:     "Generation information",
	GenTemplate: "Template does not match its sections",
	GenConflict: "Fragment identifier recorded twice",

	IOLoadSceneFailed: "Failed to load scene",
	IOCompilerMissing: "Shader compiler not found",
	IOCompilerTimeout: "Shader compiler timed out",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("GLS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
