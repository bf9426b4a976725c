package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"shadeweave/internal/diag"
	"shadeweave/internal/provenance"
)

func TestPrettyGroupsUnattributedLast(t *testing.T) {
	bag := sampleBag()
	bag.Sort()

	var buf bytes.Buffer
	Pretty(&buf, bag, sampleSet(), PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	out := buf.String()

	glass := strings.Index(out, "room.json: material 'glass' line 3: error GLS2001: 'foo' : undeclared identifier")
	floor := strings.Index(out, "room.json: object 'floor' line 1: warning GLS2002: implicit conversion")
	generated := strings.Index(out, "room.json: generated line 412: error GLS2003: syntax error")
	if glass < 0 || floor < 0 || generated < 0 {
		t.Fatalf("missing headers in output:\n%s", out)
	}
	if !(glass < floor && floor < generated) {
		t.Errorf("unexpected order (glass=%d floor=%d generated=%d):\n%s", glass, floor, generated, out)
	}
	if !strings.Contains(out, "> 3 | return foo;") {
		t.Errorf("expected offending fragment line:\n%s", out)
	}
	if !strings.Contains(out, "= note: material 'glass' line 2: declared here") {
		t.Errorf("expected note:\n%s", out)
	}
}

func TestPrettyContextAndWidth(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevError, diag.ShaderError, diag.At(provenance.Material(1), 2), "bad"))

	var buf bytes.Buffer
	Pretty(&buf, bag, sampleSet(), PrettyOpts{Context: 1, Width: 8})
	out := buf.String()

	for _, want := range []string{"  1 | vec3 n", "> 2 | float k…", "  3 | return"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "normal") || strings.Contains(out, "foo") {
		t.Errorf("snippets must be truncated:\n%s", out)
	}
}

func TestPrettyWithoutFragments(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevError, diag.ShaderUnparsed, diag.Nowhere(), "link failed"))
	bag.Add(diag.New(diag.SevError, diag.SceneEmptyCode, diag.At(provenance.Object(4), 0), "object has no code"))

	var buf bytes.Buffer
	Pretty(&buf, bag, nil, PrettyOpts{})
	out := buf.String()
	if !strings.Contains(out, "<scene>: object#4: error SCN1004: object has no code") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "<scene>: error GLS2004: link failed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestShortIsStable(t *testing.T) {
	var a, b bytes.Buffer
	Short(&a, sampleBag(), sampleSet(), PathModeBasename, true)

	reversed := diag.NewBag(0)
	items := sampleBag().Items()
	for i := len(items) - 1; i >= 0; i-- {
		reversed.Add(items[i])
	}
	Short(&b, reversed, sampleSet(), PathModeBasename, true)

	if a.String() != b.String() {
		t.Fatalf("short output depends on input order:\n%s\nvs\n%s", a.String(), b.String())
	}
	want := strings.Join([]string{
		"error GLS2003 room.json:<unattributed>:412 syntax error",
		"note GLS2002 room.json:material#1:2 declared here",
		"error GLS2001 room.json:material#1:3 'foo' : undeclared identifier",
		"warning GLS2002 room.json:object#0:1 implicit conversion",
		"",
	}, "\n")
	if a.String() != want {
		t.Errorf("unexpected short output:\n%s\nwant:\n%s", a.String(), want)
	}
}

func TestGeneratedSourceMarksLines(t *testing.T) {
	var buf bytes.Buffer
	GeneratedSource(&buf, "a\nb\nc", []int{2}, false)
	want := "  1 | a\n> 2 | b\n  3 | c\n"
	if buf.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
	}

	buf.Reset()
	RawLog(&buf, "ERROR: 0:3: x\n", false)
	if buf.String() != "compiler output:\n  ERROR: 0:3: x\n" {
		t.Errorf("unexpected raw log %q", buf.String())
	}
}
