// Package shaderlog turns raw GLSL compiler logs into located diagnostics.
package shaderlog

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"shadeweave/internal/backmap"
)

type lineForm struct {
	re *regexp.Regexp
	// submatch indices
	line, sev, msg int
}

var forms = []lineForm{
	// glslang, ANGLE: "ERROR: 0:13: 'x' : undeclared identifier"
	{re: regexp.MustCompile(`^(ERROR|WARNING|INFO):\s*[^:\s]+:(\d+):\s*(.*)$`), sev: 1, line: 2, msg: 3},
	// Mesa: "0:13(5): error: `x' undeclared"
	{re: regexp.MustCompile(`^\d+:(\d+)\(\d+\):\s*(error|warning|info):\s*(.*)$`), line: 1, sev: 2, msg: 3},
	// NVIDIA: "0(13) : error C0000: syntax error"
	{re: regexp.MustCompile(`^\d+\((\d+)\)\s*:\s*(error|warning)\s*(?:[A-Z]\d+)?:?\s*(.*)$`), line: 1, sev: 2, msg: 3},
}

// Severity of a log entry as reported by the compiler.
type Severity uint8

const (
	SevUnknown Severity = iota
	SevInfo
	SevWarning
	SevError
)

// Entry is one parsed log line.
type Entry struct {
	Raw      backmap.Raw
	Severity Severity
}

// Parse returns one raw diagnostic per non-empty log line. Lines in a known
// compiler format become located diagnostics; everything else is kept as an
// unparsed message.
func Parse(log string) []backmap.Raw {
	entries := ParseEntries(log)
	out := make([]backmap.Raw, len(entries))
	for i, e := range entries {
		out[i] = e.Raw
	}
	return out
}

// ParseEntries is Parse with the compiler-reported severity kept.
func ParseEntries(log string) []Entry {
	var out []Entry
	sc := bufio.NewScanner(strings.NewReader(log))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		out = append(out, parseLine(text))
	}
	return out
}

func parseLine(text string) Entry {
	for _, f := range forms {
		m := f.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		u, err := strconv.ParseUint(m[f.line], 10, 32)
		if err != nil {
			break
		}
		line, err := safecast.Conv[int](u)
		if err != nil {
			break
		}
		return Entry{
			Raw:      backmap.At(line, strings.TrimSpace(m[f.msg])),
			Severity: parseSeverity(m[f.sev]),
		}
	}
	return Entry{Raw: backmap.Unparsed(text), Severity: guessSeverity(text)}
}

func parseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "error":
		return SevError
	case "warning":
		return SevWarning
	case "info":
		return SevInfo
	}
	return SevUnknown
}

func guessSeverity(text string) Severity {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "error"):
		return SevError
	case strings.Contains(lower, "warning"):
		return SevWarning
	}
	return SevUnknown
}
