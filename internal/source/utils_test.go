package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "scene.json")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(target)
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}

	target := filepath.Join(baseDir, "nested", "scene.json")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(filepath.Join("nested", "scene.json"))
	if got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestNormalizeStripsBOMAndCRLF(t *testing.T) {
	got, flags := Normalize([]byte("\xEF\xBB\xBFa\r\nb\rc\r\n"))
	if string(got) != "a\nb\rc\n" {
		t.Fatalf("unexpected content %q", got)
	}
	if flags&FileHadBOM == 0 || flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", flags)
	}

	plain, flags := Normalize([]byte("x\n"))
	if string(plain) != "x\n" || flags != 0 {
		t.Fatalf("expected untouched content, got %q %b", plain, flags)
	}
}

func TestReadFileNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte("{\r\n}\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, flags, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "{\n}\n" || flags != FileNormalizedCRLF {
		t.Fatalf("unexpected result %q %b", got, flags)
	}
}

func TestFileFlagsString(t *testing.T) {
	tests := []struct {
		flags FileFlags
		want  string
	}{
		{0, ""},
		{FileHadBOM, "bom"},
		{FileNormalizedCRLF, "crlf"},
		{FileHadBOM | FileNormalizedCRLF, "bom,crlf"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("FileFlags(%b).String() = %q, want %q", uint8(tt.flags), got, tt.want)
		}
	}
}
