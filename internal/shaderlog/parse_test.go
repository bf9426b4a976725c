package shaderlog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shadeweave/internal/backmap"
)

func TestParse_KnownFormats(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want backmap.Raw
		sev  Severity
	}{
		{"glslang", "ERROR: 0:13: 'foo' : undeclared identifier", backmap.At(13, "'foo' : undeclared identifier"), SevError},
		{"glslang file", "ERROR: /tmp/x.frag:7: syntax error", backmap.At(7, "syntax error"), SevError},
		{"glslang warning", "WARNING: 0:2: '#version' : obsolete", backmap.At(2, "'#version' : obsolete"), SevWarning},
		{"mesa", "0:42(17): error: `bar' undeclared", backmap.At(42, "`bar' undeclared"), SevError},
		{"nvidia", "0(5) : error C0000: syntax error, unexpected '}'", backmap.At(5, "syntax error, unexpected '}'"), SevError},
		{"nvidia warning", "0(8) : warning C7050: \"x\" might be used before being initialized", backmap.At(8, "\"x\" might be used before being initialized"), SevWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEntries(tt.in)
			if assert.Len(t, got, 1) {
				assert.Equal(t, tt.want, got[0].Raw)
				assert.Equal(t, tt.sev, got[0].Severity)
			}
		})
	}
}

func TestParse_UnparsedAndBlankLines(t *testing.T) {
	log := "ERROR: 0:3: bad\r\n\n   \nERROR: 1 compilation errors.  No code generated.\n"
	got := Parse(log)
	assert.Equal(t, []backmap.Raw{
		backmap.At(3, "bad"),
		backmap.Unparsed("ERROR: 1 compilation errors.  No code generated."),
	}, got)
	assert.Empty(t, Parse(""))
}

func TestParse_GuessedSeverity(t *testing.T) {
	got := ParseEntries("Linker error: missing main\nsomething odd")
	assert.Equal(t, SevError, got[0].Severity)
	assert.Equal(t, SevUnknown, got[1].Severity)
	assert.False(t, got[0].Raw.Located)
}

func TestParse_LineOutOfRangeIsUnparsed(t *testing.T) {
	got := Parse("ERROR: 0:99999999999: huge")
	assert.Equal(t, []backmap.Raw{backmap.Unparsed("ERROR: 0:99999999999: huge")}, got)
}
