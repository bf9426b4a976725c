package source

import (
	"strings"

	"shadeweave/internal/provenance"
)

// FileFlags encodes what normalisation was applied to loaded content.
type FileFlags uint8

const (
	FileHadBOM FileFlags = 1 << iota
	FileNormalizedCRLF
)

func (f FileFlags) String() string {
	var parts []string
	if f&FileHadBOM != 0 {
		parts = append(parts, "bom")
	}
	if f&FileNormalizedCRLF != 0 {
		parts = append(parts, "crlf")
	}
	return strings.Join(parts, ",")
}

// Fragment is the authored text behind one provenance ID.
type Fragment struct {
	ID      provenance.ID
	Name    string
	Text    string
	lineIdx []int
}
