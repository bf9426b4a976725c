package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"shadeweave/internal/diag"
	"shadeweave/internal/source"
)

type shortDiagnostic struct {
	d    diag.Diagnostic
	text string
}

// Short prints one stable line per diagnostic:
//
//	error GLS2001 room.json:material#1:3 'foo' : undeclared identifier
//
// Lines are ordered by origin, line, severity, code and message, so the output
// can be compared in tests and golden files.
func Short(w io.Writer, bag *diag.Bag, fs *source.FragmentSet, pathMode PathMode, includeNotes bool) {
	path := pathMode.format(fs.Path())
	rows := make([]shortDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		rows = append(rows, shortDiagnostic{d: d, text: shortLine(path, d.Severity.Label(), d.Code, d.Primary, d.Message)})
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			nd := diag.Diagnostic{Severity: d.Severity, Code: d.Code, Primary: n.Loc, Message: n.Msg}
			rows = append(rows, shortDiagnostic{d: nd, text: shortLine(path, "note", d.Code, n.Loc, n.Msg)})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].d, rows[j].d
		if c := di.Primary.Origin.Compare(dj.Primary.Origin); c != 0 {
			return c < 0
		}
		if di.Primary.Line != dj.Primary.Line {
			return di.Primary.Line < dj.Primary.Line
		}
		return rows[i].text < rows[j].text
	})
	for _, r := range rows {
		fmt.Fprintln(w, r.text)
	}
}

func shortLine(path, sev string, code diag.Code, loc diag.Location, msg string) string {
	pos := loc.Origin.String()
	if loc.HasLine() {
		pos = fmt.Sprintf("%s:%d", pos, loc.Line)
	}
	return fmt.Sprintf("%s %s %s:%s %s", sev, code.ID(), path, pos, sanitizeMessage(msg))
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
