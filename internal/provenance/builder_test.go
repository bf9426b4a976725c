package provenance

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	idX = Material(1)
	idY = Object(2)
)

func exampleBuilders(t *testing.T) (a, b *Builder) {
	t.Helper()
	a = NewBuilder()
	a.Append("1\n2\n3\n")
	require.Equal(t, 4, a.Line())
	require.NoError(t, a.AppendIdentified(idX, "\n4\n5\n"))

	b = NewBuilder()
	b.Append("a\nb")
	require.Equal(t, 2, b.Line())
	require.NoError(t, b.AppendIdentified(idY, "c\nd"))
	return a, b
}

func TestBuilder_AppendIdentified(t *testing.T) {
	a, b := exampleBuilders(t)

	assert.Equal(t, "1\n2\n3\n\n4\n5\n", a.String())
	assert.Equal(t, 7, a.Line())
	lines, ok := a.Index().Get(idX)
	require.True(t, ok)
	assert.Equal(t, Lines{Start: 4, End: 8}, lines)

	assert.Equal(t, "a\nbc\nd", b.String())
	assert.Equal(t, 3, b.Line())
	lines, ok = b.Index().Get(idY)
	require.True(t, ok)
	assert.Equal(t, Lines{Start: 2, End: 4}, lines)
}

func TestBuilder_ZeroValueStartsAtLineOne(t *testing.T) {
	var b Builder
	assert.Equal(t, 1, b.Line())
	require.NoError(t, b.AppendIdentified(Library(0), "x"))
	lines, ok := b.Index().Get(Library(0))
	require.True(t, ok)
	assert.Equal(t, Lines{Start: 1, End: 2}, lines)
}

func TestBuilder_LineCountInvariant(t *testing.T) {
	chunks := []string{"", "no newline", "\n", "a\nb\n", "\n\n\n", "tail", "x\r\ny"}
	b := NewBuilder()
	for i, chunk := range chunks {
		if i%2 == 0 {
			b.Append(chunk)
		} else {
			require.NoError(t, b.AppendIdentified(Library(i), chunk))
		}
		assert.Equal(t, 1+strings.Count(b.String(), "\n"), b.Line(), "after chunk %d", i)
	}
}

func TestBuilder_ContainmentInvariant(t *testing.T) {
	fragments := []string{"one", "one\ntwo", "one\ntwo\n", "\n", "", "\n\nthree"}
	for i, frag := range fragments {
		b := NewBuilder()
		b.Append("prefix\nline")
		start := b.Line()
		require.NoError(t, b.AppendIdentified(Material(i), frag))
		lines, ok := b.Index().Get(Material(i))
		require.True(t, ok)

		spanned := strings.Count(frag, "\n") + 1
		for line := start; line < start+spanned; line++ {
			assert.True(t, lines.Contains(line), "fragment %d: line %d not in %s", i, line, lines)
		}
	}
}

func TestBuilder_DuplicateIDFails(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AppendIdentified(idX, "first\n"))
	before := b.String()

	err := b.AppendIdentified(idX, "second\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.IsAssertionFailure(err))
	assert.Equal(t, before, b.String(), "failed append must not touch the buffer")
}

func TestBuilder_SpliceShiftsByCursor(t *testing.T) {
	a, b := exampleBuilders(t)
	bText := b.String()
	cursor := a.Line()

	direct := a.String() + bText
	require.NoError(t, a.Splice(b))

	assert.Equal(t, direct, a.String())
	lines, ok := a.Index().Get(idY)
	require.True(t, ok)
	assert.Equal(t, Lines{Start: 2 + cursor - 1, End: 4 + cursor - 1}, lines)
	lines, ok = a.Index().Get(idX)
	require.True(t, ok)
	assert.Equal(t, Lines{Start: 4, End: 8}, lines)
	assert.True(t, b.Moved())
}

func TestBuilder_SpliceConflictLeavesBothIntact(t *testing.T) {
	a := NewBuilder()
	require.NoError(t, a.AppendIdentified(idX, "a\n"))
	b := NewBuilder()
	require.NoError(t, b.AppendIdentified(idX, "b\n"))

	err := a.Splice(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "a\n", a.String())
	assert.False(t, b.Moved())
	assert.Equal(t, "b\n", b.String())
}

func TestBuilder_UseAfterSplicePanics(t *testing.T) {
	a, b := exampleBuilders(t)
	require.NoError(t, a.Splice(b))
	assert.Panics(t, func() { b.Append("x") })
	assert.Panics(t, func() { _ = a.Splice(b) })
}
