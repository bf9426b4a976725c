// Package backmap routes compiler diagnostics, reported against lines of a composed
// document, back to the fragments that produced those lines.
package backmap

import (
	"math"
	"slices"

	"shadeweave/internal/provenance"
)

// NoLine is the local line given to diagnostics that carry no line information.
const NoLine = math.MaxInt

// Raw is one diagnostic as delivered by the compiler log parser: either a located
// (line, message) pair or a message that could not be parsed.
type Raw struct {
	Line    int
	Message string
	Located bool
}

// At returns a located raw diagnostic.
func At(line int, msg string) Raw {
	return Raw{Line: line, Message: msg, Located: true}
}

// Unparsed returns a raw diagnostic without line information.
func Unparsed(msg string) Raw {
	return Raw{Message: msg}
}

// Local is a diagnostic expressed in the lines of its fragment.
type Local struct {
	Line    int    `json:"line" msgpack:"line"`
	Message string `json:"message" msgpack:"message"`
}

// HasLine reports whether the diagnostic carries a line number.
func (l Local) HasLine() bool {
	return l.Line != NoLine
}

// Buckets holds back-mapped diagnostics per fragment ID. Within a bucket the order
// in which diagnostics were received is kept.
type Buckets map[provenance.ID][]Local

// Map back-maps raws through index. A located diagnostic inside some fragment goes
// to that fragment with its local line; one outside every fragment goes to the
// default ID with its absolute line; an unparsed one goes to the default ID with NoLine.
func Map(index *provenance.Index, raws []Raw) Buckets {
	out := make(Buckets)
	for _, r := range raws {
		id, l := Locate(index, r)
		out.Add(id, l)
	}
	return out
}

// Locate back-maps a single raw diagnostic the way Map does.
func Locate(index *provenance.Index, r Raw) (provenance.ID, Local) {
	if !r.Located {
		return provenance.Default, Local{Line: NoLine, Message: r.Message}
	}
	if index != nil {
		if id, local, ok := index.FindOwner(r.Line); ok {
			return id, Local{Line: local, Message: r.Message}
		}
	}
	return provenance.Default, Local{Line: r.Line, Message: r.Message}
}

// Add appends l to the bucket of id.
func (b Buckets) Add(id provenance.ID, l Local) {
	b[id] = append(b[id], l)
}

// IDs returns the IDs that have diagnostics, in ID order.
func (b Buckets) IDs() []provenance.ID {
	ids := make([]provenance.ID, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, provenance.ID.Compare)
	return ids
}

// Count returns the total number of diagnostics.
func (b Buckets) Count() int {
	n := 0
	for _, items := range b {
		n += len(items)
	}
	return n
}

// Unattributed returns the diagnostics of the default ID.
func (b Buckets) Unattributed() []Local {
	return b[provenance.Default]
}
