package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics from compiler chatter up to rejected programs.
type Severity uint8

const (
	// SevInfo covers compiler notes and load-time normalisation.
	SevInfo Severity = iota
	SevWarning
	// SevError marks a scene that was not generated or a program that did not compile.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Label is the lowercase word printed in front of human-readable diagnostics.
func (s Severity) Label() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	}
	return "info"
}

// SARIFLevel maps s onto the result levels of SARIF 2.1.0.
func (s Severity) SARIFLevel() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	}
	return "note"
}

// ParseSeverity accepts the labels, the upper-case names and "note".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "note":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevInfo, fmt.Errorf("unknown severity %q (expected info|warning|error)", s)
}
