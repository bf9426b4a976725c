package provenance

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Builder is an append-only text buffer that tracks the lines of identified fragments.
// The zero value is an empty builder whose cursor is at line 1.
type Builder struct {
	buf      strings.Builder
	index    Index
	newlines int
	moved    bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Line returns the current 1-based line cursor: one plus the number of '\n' in the buffer.
func (b *Builder) Line() int {
	return b.newlines + 1
}

// String returns the accumulated text.
func (b *Builder) String() string {
	return b.buf.String()
}

// Len returns the length of the accumulated text in bytes.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// Index returns the builder's provenance index. Callers must not modify it.
func (b *Builder) Index() *Index {
	return &b.index
}

// Moved reports whether the builder was consumed by Splice.
func (b *Builder) Moved() bool {
	return b.moved
}

func (b *Builder) mustLive() {
	if b.moved {
		panic(errors.AssertionFailedf("provenance: use of a builder after it was spliced"))
	}
}

// Append adds text verbatim and advances the cursor by its '\n' count.
func (b *Builder) Append(text string) {
	b.mustLive()
	b.newlines += strings.Count(text, "\n")
	b.buf.WriteString(text)
}

// AppendIdentified appends text as the fragment id. The recorded range starts at
// the cursor before the append and ends one past the cursor after it.
// Nothing is appended when id is already present.
func (b *Builder) AppendIdentified(id ID, text string) error {
	b.mustLive()
	start := b.Line()
	end := start + strings.Count(text, "\n")
	if err := b.index.Insert(id, Lines{Start: start, End: end + 1}); err != nil {
		return err
	}
	b.Append(text)
	return nil
}

// Splice consumes other: its ranges are shifted by Line()-1, its text is appended
// and its index merged into b. On an ID collision b is left unchanged and other is
// not consumed.
func (b *Builder) Splice(other *Builder) error {
	b.mustLive()
	other.mustLive()
	if other == b {
		return errors.AssertionFailedf("provenance: builder spliced into itself")
	}

	shifted := other.index.Clone()
	shifted.Shift(b.Line() - 1)
	for _, e := range shifted.entries {
		if have, ok := b.index.Get(e.ID); ok {
			return conflictError(e.ID, have, e.Lines)
		}
	}

	b.Append(other.buf.String())
	if err := b.index.Merge(shifted); err != nil {
		return err
	}

	other.buf.Reset()
	other.index = Index{}
	other.newlines = 0
	other.moved = true
	return nil
}
