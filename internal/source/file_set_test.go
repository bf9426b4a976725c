package source

import (
	"testing"

	"shadeweave/internal/provenance"
)

func TestFragmentSetLines(t *testing.T) {
	fs := NewFragmentSet("scenes/../scenes/demo.json")
	if fs.Path() != "scenes/demo.json" {
		t.Fatalf("expected cleaned path, got %q", fs.Path())
	}

	id := provenance.Material(2)
	fs.Add(id, "glass", "vec3 c = vec3(1.);\nreturn c;")

	f, ok := fs.Get(id)
	if !ok {
		t.Fatal("fragment not registered")
	}
	if f.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", f.LineCount())
	}
	cases := map[int]string{
		0: "",
		1: "vec3 c = vec3(1.);",
		2: "return c;",
		3: "",
	}
	for line, want := range cases {
		if got := f.GetLine(line); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", line, got, want)
		}
	}
}

func TestFragmentSetTrailingNewline(t *testing.T) {
	fs := NewFragmentSet("")
	f := fs.Add(provenance.Library(0), "", "a\n")
	if f.LineCount() != 2 || f.GetLine(2) != "" || f.GetLine(1) != "a" {
		t.Fatalf("unexpected lines: count=%d", f.LineCount())
	}
}

func TestFragmentSetLabelsAndOrder(t *testing.T) {
	fs := NewFragmentSet("demo.toml")
	fs.Add(provenance.Library(0), "noise", "")
	fs.Add(provenance.Object(1), "mirror", "")
	fs.Add(provenance.Material(5), "", "")

	ids := fs.IDs()
	if len(ids) != 3 || ids[0] != provenance.Material(5) || ids[2] != provenance.Library(0) {
		t.Fatalf("unexpected order %v", ids)
	}
	if got := fs.Label(provenance.Object(1)); got != "object 'mirror'" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := fs.Label(provenance.Material(5)); got != "material#5" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := fs.Label(provenance.Default); got != "<unattributed>" {
		t.Fatalf("unexpected label %q", got)
	}

	var nilSet *FragmentSet
	if _, ok := nilSet.Get(provenance.Default); ok || nilSet.Len() != 0 {
		t.Fatal("nil set must be empty")
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("a\r\nb"); got != "a\nb" {
		t.Fatalf("got %q", got)
	}
}
