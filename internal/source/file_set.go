package source

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"shadeweave/internal/provenance"
)

// FragmentSet maps fragment IDs to the text the user wrote for them.
// The zero value is not usable; construct with NewFragmentSet.
type FragmentSet struct {
	frags map[provenance.ID]*Fragment
	path  string
}

// NewFragmentSet returns an empty set for the scene at path.
func NewFragmentSet(path string) *FragmentSet {
	return &FragmentSet{
		frags: make(map[provenance.ID]*Fragment),
		path:  normalizePath(path),
	}
}

// Path returns the scene path the fragments were loaded from.
func (s *FragmentSet) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Add registers text for id, replacing any previous entry.
func (s *FragmentSet) Add(id provenance.ID, name, text string) *Fragment {
	f := &Fragment{ID: id, Name: name, Text: text, lineIdx: buildLineIndex([]byte(text))}
	s.frags[id] = f
	return f
}

// Get returns the fragment registered for id.
func (s *FragmentSet) Get(id provenance.ID) (*Fragment, bool) {
	if s == nil {
		return nil, false
	}
	f, ok := s.frags[id]
	return f, ok
}

// Len returns the number of registered fragments.
func (s *FragmentSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.frags)
}

// IDs returns registered IDs in ID order.
func (s *FragmentSet) IDs() []provenance.ID {
	ids := make([]provenance.ID, 0, len(s.frags))
	for id := range s.frags {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, provenance.ID.Compare)
	return ids
}

// Label renders a human name such as `material 'glass'`.
func (s *FragmentSet) Label(id provenance.ID) string {
	if f, ok := s.Get(id); ok && f.Name != "" {
		return fmt.Sprintf("%s '%s'", id.Kind, f.Name)
	}
	return id.String()
}

// LineCount returns the number of lines in the fragment.
func (f *Fragment) LineCount() int {
	return len(f.lineIdx) + 1
}

// GetLine returns line lineNum (1-based) or "" when it does not exist.
func (f *Fragment) GetLine(lineNum int) string {
	if lineNum <= 0 || lineNum > f.LineCount() {
		return ""
	}
	start := 0
	if lineNum > 1 {
		start = f.lineIdx[lineNum-2] + 1
	}
	end := len(f.Text)
	if lineNum-1 < len(f.lineIdx) {
		end = f.lineIdx[lineNum-1]
	}
	if start > end {
		return ""
	}
	return f.Text[start:end]
}

// ReadFile reads path and normalises BOM and CRLF line endings.
func ReadFile(path string) ([]byte, FileFlags, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	content, flags := Normalize(content)
	return content, flags, nil
}

// Normalize strips a UTF-8 BOM and turns CRLF into LF.
func Normalize(content []byte) ([]byte, FileFlags) {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

// NormalizeText is Normalize for fragment strings.
func NormalizeText(s string) string {
	out, flags := normalizeCRLF([]byte(s))
	if flags {
		return string(out)
	}
	return s
}

// DisplayPath formats path for output.
// mode: "absolute", "relative", "basename", "auto"
func DisplayPath(path, mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(path); err == nil {
			return abs
		}
		return path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(path, baseDir); err == nil {
			return rel
		}
		return path

	case "basename":
		return filepath.Base(path)

	case "auto":
		if len(path) < 40 || !filepath.IsAbs(path) {
			return path
		}
		return filepath.Base(path)

	default:
		return path
	}
}
