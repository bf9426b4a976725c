package diagfmt

import "shadeweave/internal/source"

// PathMode specifies how the scene path is displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short or relative paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) format(path string) string {
	if path == "" {
		return "<scene>"
	}
	switch m {
	case PathModeAbsolute:
		return source.DisplayPath(path, "absolute", "")
	case PathModeRelative:
		return source.DisplayPath(path, "relative", "")
	case PathModeBasename:
		return source.DisplayPath(path, "basename", "")
	default:
		return source.DisplayPath(path, "auto", "")
	}
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int // fragment lines shown around the reported one
	PathMode  PathMode
	Width     int // maximum snippet width in cells, 0 means unlimited
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // truncates output, not the Bag
	IncludeNotes bool
	IncludeText  bool // attach the offending fragment line
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
