package driver

import (
	"fmt"

	"shadeweave/internal/backmap"
	"shadeweave/internal/codegen"
	"shadeweave/internal/diag"
	"shadeweave/internal/provenance"
	"shadeweave/internal/shader"
	"shadeweave/internal/shaderlog"
)

// Remap parses a compiler log for the given stage of out and routes each entry
// to the fragment that produced its line. Every entry is also added to bag as a
// diagnostic. Only fragment-stage lines refer to out.Code; vertex and link
// entries all land in the unattributed bucket.
func Remap(out *codegen.Output, stage shader.Stage, log string, bag *diag.Bag) backmap.Buckets {
	var index *provenance.Index
	if out != nil && stage == shader.StageFragment {
		index = out.Index
	}
	buckets := make(backmap.Buckets)
	for _, e := range shaderlog.ParseEntries(log) {
		id, local := backmap.Locate(index, e.Raw)
		buckets.Add(id, local)
		if bag != nil {
			bag.Add(toDiagnostic(stage, id, local, e.Severity))
		}
	}
	return buckets
}

func toDiagnostic(stage shader.Stage, id provenance.ID, l backmap.Local, sev shaderlog.Severity) diag.Diagnostic {
	switch {
	case stage == shader.StageLink:
		return diag.New(severity(sev, diag.SevError), diag.ShaderLink, diag.Nowhere(), l.Message)
	case stage == shader.StageVertex:
		msg := "vertex shader: " + l.Message
		if l.HasLine() {
			msg = fmt.Sprintf("vertex shader line %d: %s", l.Line, l.Message)
		}
		return diag.New(severity(sev, diag.SevError), diag.ShaderUnattributed, diag.Nowhere(), msg)
	case !id.IsDefault():
		return diag.New(severity(sev, diag.SevError), fragmentCode(sev), diag.At(id, l.Line), l.Message)
	case l.HasLine():
		return diag.New(severity(sev, diag.SevError), diag.ShaderUnattributed, diag.At(id, l.Line), l.Message)
	default:
		// compiler chatter such as "1 compilation errors" keeps its guessed severity
		return diag.New(severity(sev, diag.SevInfo), diag.ShaderUnparsed, diag.Nowhere(), l.Message)
	}
}

func fragmentCode(sev shaderlog.Severity) diag.Code {
	switch sev {
	case shaderlog.SevWarning:
		return diag.ShaderWarning
	case shaderlog.SevInfo:
		return diag.ShaderInfo
	}
	return diag.ShaderError
}

func severity(sev shaderlog.Severity, unknown diag.Severity) diag.Severity {
	switch sev {
	case shaderlog.SevError:
		return diag.SevError
	case shaderlog.SevWarning:
		return diag.SevWarning
	case shaderlog.SevInfo:
		return diag.SevInfo
	}
	return unknown
}
