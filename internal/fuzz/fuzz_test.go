package fuzztests

import (
	"strings"
	"testing"

	"shadeweave/internal/codegen"
	"shadeweave/internal/diag"
	"shadeweave/internal/provenance"
	"shadeweave/internal/scene"
	"shadeweave/internal/shaderlog"
	"shadeweave/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func FuzzShaderLog(f *testing.F) {
	for _, s := range logSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, log string) {
		for _, r := range shaderlog.Parse(log) {
			if r.Located && r.Line < 0 {
				t.Fatalf("located line %d from %q", r.Line, log)
			}
		}
	})
}

func FuzzTemplateExpand(f *testing.F) {
	for _, s := range templateSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, template string) {
		sec := provenance.NewBuilder()
		if err := sec.AppendIdentified(provenance.Object(0), "float d = 1.0;\n"); err != nil {
			t.Fatal(err)
		}
		out, err := provenance.Expand(template, map[string]*provenance.Builder{"uniforms": sec})
		if err != nil {
			return
		}
		lines := strings.Count(out.String(), "\n") + 1
		for id, l := range out.Index().All() {
			if l.Start < 1 || l.End < l.Start || l.Start > lines {
				t.Fatalf("%s: range %s outside %d lines", id, l, lines)
			}
		}
	})
}

func FuzzSceneGenerate(f *testing.F) {
	addSceneSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		sc, err := scene.Decode(clamp(input), scene.FormatJSON)
		if err != nil {
			return
		}
		bag := diag.NewBag(64)
		if !scene.Validate(sc, diag.BagReporter{Bag: bag}) {
			return
		}
		out, err := codegen.Generate(sc)
		if err != nil {
			t.Fatalf("valid scene failed to generate: %v", err)
		}
		if err := testkit.CheckIndex(out.Code, out.Index, out.Fragments); err != nil {
			t.Fatal(err)
		}
		for line := range out.Lines() + 2 {
			_, _, _ = out.Index.FindOwner(line)
		}
	})
}
