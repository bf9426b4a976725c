package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"shadeweave/internal/diag"
	"shadeweave/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, note, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.FgMagenta),
		gutter: color.New(color.FgBlue),
		note:   color.New(color.FgGreen),
		dim:    color.New(color.Faint),
	}
	if !enabled {
		for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.note, p.dim} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.note, p.dim} {
			c.EnableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty prints diagnostics for people. Diagnostics attributed to a fragment come
// first, in bag order (call bag.Sort beforehand for ID order), each followed by the
// offending fragment line. Unattributed diagnostics follow at the end.
//
//	room.json: material 'glass' line 3: error GLS2001: 'foo' : undeclared identifier
//	    3 | return foo;
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FragmentSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	path := opts.PathMode.format(fs.Path())

	var unattributed []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Primary.Origin.IsDefault() {
			unattributed = append(unattributed, d)
			continue
		}
		prettyOne(w, p, path, d, fs, opts)
	}
	for _, d := range unattributed {
		prettyOne(w, p, path, d, fs, opts)
	}
}

func prettyOne(w io.Writer, p palette, path string, d diag.Diagnostic, fs *source.FragmentSet, opts PrettyOpts) {
	sev := p.severity(d.Severity)
	fmt.Fprintf(w, "%s: %s%s %s: %s\n",
		path,
		where(d.Primary, fs),
		sev.Sprint(d.Severity.Label()),
		p.code.Sprint(d.Code.ID()),
		d.Message,
	)
	snippet(w, p, d.Primary, fs, opts)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s%s\n", p.note.Sprint("= note:"), where(n.Loc, fs), n.Msg)
			snippet(w, p, n.Loc, fs, opts)
		}
	}
}

// where renders the location prefix, e.g. "material 'glass' line 3: ".
func where(loc diag.Location, fs *source.FragmentSet) string {
	switch {
	case loc.Origin.IsDefault() && loc.HasLine():
		return fmt.Sprintf("generated line %d: ", loc.Line)
	case loc.Origin.IsDefault():
		return ""
	case loc.HasLine():
		return fmt.Sprintf("%s line %d: ", fs.Label(loc.Origin), loc.Line)
	default:
		return fs.Label(loc.Origin) + ": "
	}
}

func snippet(w io.Writer, p palette, loc diag.Location, fs *source.FragmentSet, opts PrettyOpts) {
	if !loc.HasLine() {
		return
	}
	f, ok := fs.Get(loc.Origin)
	if !ok {
		return
	}
	first := max(1, loc.Line-opts.Context)
	last := min(f.LineCount(), loc.Line+opts.Context)
	width := len(fmt.Sprint(last))
	for n := first; n <= last; n++ {
		text := f.GetLine(n)
		if opts.Width > 0 {
			text = runewidth.Truncate(text, opts.Width, "…")
		}
		marker := " "
		if n == loc.Line {
			marker = ">"
		}
		fmt.Fprintf(w, "  %s %s %s\n", marker, p.gutter.Sprintf("%*d |", width, n), text)
	}
}

// GeneratedSource prints code with line numbers, marking the given lines.
func GeneratedSource(w io.Writer, code string, marked []int, colored bool) {
	p := newPalette(colored)
	lines := strings.Split(code, "\n")
	mark := make(map[int]bool, len(marked))
	for _, n := range marked {
		mark[n] = true
	}
	width := len(fmt.Sprint(len(lines)))
	for i, text := range lines {
		n := i + 1
		if mark[n] {
			fmt.Fprintf(w, "%s %s %s\n", p.err.Sprint(">"), p.gutter.Sprintf("%*d |", width, n), text)
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", p.gutter.Sprintf("%*d |", width, n), p.dim.Sprint(text))
	}
}

// RawLog prints the compiler log verbatim under a header.
func RawLog(w io.Writer, log string, colored bool) {
	p := newPalette(colored)
	fmt.Fprintln(w, p.note.Sprint("compiler output:"))
	for _, line := range strings.Split(strings.TrimRight(log, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
