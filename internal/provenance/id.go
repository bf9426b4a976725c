package provenance

import (
	"cmp"
	"fmt"
)

// Kind tags the entity collection an ID was derived from.
type Kind uint8

const (
	// KindNone marks the default ID.
	KindNone Kind = iota
	KindMaterial
	KindObject
	KindLibrary
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMaterial:
		return "material"
	case KindObject:
		return "object"
	case KindLibrary:
		return "library"
	}
	return "unknown"
}

// ID identifies one authored fragment within a generation pass.
// IDs are ordered by Kind first, then by Pos.
type ID struct {
	Kind Kind `json:"kind" msgpack:"k"`
	Pos  int  `json:"pos" msgpack:"p"`
}

// Default is the reserved ID for text that belongs to no entity.
var Default ID

// Material returns the ID of the material at position pos.
func Material(pos int) ID { return ID{Kind: KindMaterial, Pos: pos} }

// Object returns the ID of the object at position pos.
func Object(pos int) ID { return ID{Kind: KindObject, Pos: pos} }

// Library returns the ID of the user library entry at position pos.
func Library(pos int) ID { return ID{Kind: KindLibrary, Pos: pos} }

// IsDefault reports whether id is the reserved default ID.
func (id ID) IsDefault() bool { return id == Default }

// Compare orders IDs by kind, then by position.
func (id ID) Compare(other ID) int {
	if c := cmp.Compare(id.Kind, other.Kind); c != 0 {
		return c
	}
	return cmp.Compare(id.Pos, other.Pos)
}

func (id ID) String() string {
	if id.IsDefault() {
		return "<unattributed>"
	}
	return fmt.Sprintf("%s#%d", id.Kind, id.Pos)
}
