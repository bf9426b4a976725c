package provenance

import "fmt"

// Lines is a half-open range [Start, End) of 1-based line numbers.
type Lines struct {
	Start int `json:"start" msgpack:"s"`
	End   int `json:"end" msgpack:"e"`
}

// Contains reports whether line lies inside the range.
func (l Lines) Contains(line int) bool {
	return l.Start <= line && line < l.End
}

// Len returns the number of lines covered by the range.
func (l Lines) Len() int {
	return l.End - l.Start
}

// Shift moves both bounds by delta.
func (l Lines) Shift(delta int) Lines {
	return Lines{Start: l.Start + delta, End: l.End + delta}
}

// Local converts an absolute line into a 1-based line relative to Start.
func (l Lines) Local(line int) int {
	return line - l.Start + 1
}

func (l Lines) String() string {
	return fmt.Sprintf("%d..%d", l.Start, l.End)
}
