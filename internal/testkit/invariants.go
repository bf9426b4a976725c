// Package testkit holds checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"
	"strings"

	"shadeweave/internal/provenance"
	"shadeweave/internal/source"
)

// CheckIndex runs the provenance invariants of one generated document:
//  1. every range is non-empty and starts inside code
//  2. no range ends past one line after the last line of code
//  3. the fragment text recorded in fs appears at the lines its range names,
//     the first line possibly preceded by generated text
func CheckIndex(code string, index *provenance.Index, fs *source.FragmentSet) error {
	if index == nil {
		return fmt.Errorf("nil index")
	}
	lines := strings.Split(code, "\n")
	for id, l := range index.All() {
		if l.Start < 1 || l.End <= l.Start {
			return fmt.Errorf("%s: bad range %s", id, l)
		}
		if l.Start > len(lines) {
			return fmt.Errorf("%s: range %s starts past %d lines", id, l, len(lines))
		}
		if l.End > len(lines)+2 {
			return fmt.Errorf("%s: range %s ends past %d lines", id, l, len(lines))
		}
		if fs == nil {
			continue
		}
		frag, ok := fs.Get(id)
		if !ok {
			continue
		}
		for i, want := range strings.Split(strings.TrimSuffix(frag.Text, "\n"), "\n") {
			n := l.Start + i
			if n > len(lines) {
				return fmt.Errorf("%s: fragment line %d past end of code", id, i+1)
			}
			got := lines[n-1]
			if i == 0 && strings.HasSuffix(got, want) || got == want {
				continue
			}
			return fmt.Errorf("%s: line %d is %q, fragment line %d is %q", id, n, got, i+1, want)
		}
	}
	return nil
}
