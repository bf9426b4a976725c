package diagfmt

import (
	"encoding/json"
	"io"

	"fortio.org/safecast"

	"shadeweave/internal/diag"
	"shadeweave/internal/observ"
	"shadeweave/internal/source"
)

// LocationJSON describes where a diagnostic points.
type LocationJSON struct {
	File   string `json:"file"`
	Origin string `json:"origin"`
	Kind   string `json:"kind"`
	Pos    int    `json:"pos"`
	Entity string `json:"entity,omitempty"`
	Line   uint32 `json:"line,omitempty"`
	Text   string `json:"text,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Timings     *observ.Report   `json:"timings,omitempty"`
}

func makeLocation(loc diag.Location, fs *source.FragmentSet, opts JSONOpts) LocationJSON {
	out := LocationJSON{
		File:   opts.PathMode.format(fs.Path()),
		Origin: loc.Origin.String(),
		Kind:   loc.Origin.Kind.String(),
		Pos:    loc.Origin.Pos,
	}
	f, ok := fs.Get(loc.Origin)
	if ok {
		out.Entity = f.Name
	}
	if loc.HasLine() {
		// lines past uint32 cannot come from a real compiler; drop them
		if line, err := safecast.Conv[uint32](loc.Line); err == nil {
			out.Line = line
		}
		if ok && opts.IncludeText {
			out.Text = f.GetLine(loc.Line)
		}
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON structure without serialising it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FragmentSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, n)
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Loc, fs, opts)}
			}
		}
		diagnostics = append(diagnostics, dj)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes diagnostics as indented JSON. timings may be nil.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FragmentSet, opts JSONOpts, timings *observ.Report) error {
	output := BuildDiagnosticsOutput(bag, fs, opts)
	output.Timings = timings

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
