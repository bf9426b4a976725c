package provenance

import (
	"iter"
	"slices"
)

// Entry is one ID with the lines it occupies.
type Entry struct {
	ID    ID    `json:"id" msgpack:"id"`
	Lines Lines `json:"lines" msgpack:"lines"`
}

// Index maps IDs to line ranges. Entries are kept sorted by ID.
// The zero value is an empty index ready to use.
type Index struct {
	entries []Entry
}

// NewIndex builds an index from entries in any order.
// It fails if an ID appears twice.
func NewIndex(entries []Entry) (*Index, error) {
	x := &Index{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		if err := x.Insert(e.ID, e.Lines); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.entries)
}

func (x *Index) search(id ID) (int, bool) {
	return slices.BinarySearchFunc(x.entries, id, func(e Entry, target ID) int {
		return e.ID.Compare(target)
	})
}

// Get returns the lines recorded for id.
func (x *Index) Get(id ID) (Lines, bool) {
	i, ok := x.search(id)
	if !ok {
		return Lines{}, false
	}
	return x.entries[i].Lines, true
}

// Insert records lines for id. Recording the same ID twice is an invariant
// violation and yields an error marked with ErrConflict.
func (x *Index) Insert(id ID, lines Lines) error {
	i, ok := x.search(id)
	if ok {
		return conflictError(id, x.entries[i].Lines, lines)
	}
	x.entries = slices.Insert(x.entries, i, Entry{ID: id, Lines: lines})
	return nil
}

// Shift adds delta to both bounds of every range.
func (x *Index) Shift(delta int) {
	if delta == 0 {
		return
	}
	for i := range x.entries {
		x.entries[i].Lines = x.entries[i].Lines.Shift(delta)
	}
}

// Merge adds every entry of other. On any ID collision nothing is merged and
// the first colliding ID is reported.
func (x *Index) Merge(other *Index) error {
	if other == nil || len(other.entries) == 0 {
		return nil
	}
	for _, e := range other.entries {
		if i, ok := x.search(e.ID); ok {
			return conflictError(e.ID, x.entries[i].Lines, e.Lines)
		}
	}
	merged := make([]Entry, 0, len(x.entries)+len(other.entries))
	merged = append(merged, x.entries...)
	merged = append(merged, other.entries...)
	slices.SortFunc(merged, func(a, b Entry) int { return a.ID.Compare(b.ID) })
	x.entries = merged
	return nil
}

// FindOwner returns the first entry, in ID order, whose range contains line,
// along with line translated to the fragment's own 1-based numbering.
func (x *Index) FindOwner(line int) (ID, int, bool) {
	for _, e := range x.entries {
		if e.Lines.Contains(line) {
			return e.ID, e.Lines.Local(line), true
		}
	}
	return Default, 0, false
}

// Entries returns a copy of the entries in ID order.
func (x *Index) Entries() []Entry {
	return slices.Clone(x.entries)
}

// All iterates over the entries in ID order.
func (x *Index) All() iter.Seq2[ID, Lines] {
	return func(yield func(ID, Lines) bool) {
		for _, e := range x.entries {
			if !yield(e.ID, e.Lines) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the index.
func (x *Index) Clone() *Index {
	return &Index{entries: slices.Clone(x.entries)}
}
