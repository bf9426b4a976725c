package diag

import (
	"fmt"
	"math"

	"shadeweave/internal/provenance"
)

// Location points at a line of an authored fragment. Origin is the fragment ID;
// the default ID means the line (if any) is absolute within the generated code.
type Location struct {
	Origin provenance.ID `json:"origin" msgpack:"origin"`
	Line   int           `json:"line,omitempty" msgpack:"line,omitempty"`
}

// At builds a location inside the fragment id.
func At(id provenance.ID, line int) Location {
	return Location{Origin: id, Line: line}
}

// Nowhere is a location without fragment or line.
func Nowhere() Location {
	return Location{}
}

// HasLine reports whether the location carries a usable line number.
func (l Location) HasLine() bool {
	return l.Line > 0 && l.Line != math.MaxInt
}

func (l Location) String() string {
	if !l.HasLine() {
		return l.Origin.String()
	}
	return fmt.Sprintf("%s:%d", l.Origin, l.Line)
}

type Note struct {
	Loc Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}
