package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadeweave/internal/diag"
	"shadeweave/internal/source"
)

func TestLoadScene_NormalizesAndReports(t *testing.T) {
	plain, err := os.ReadFile(filepath.Join("testdata", "room.json"))
	require.NoError(t, err)
	dir := t.TempDir()

	tests := []struct {
		name  string
		data  []byte
		flags source.FileFlags
		codes []diag.Code
	}{
		{"plain", plain, 0, nil},
		{"crlf", []byte(strings.ReplaceAll(string(plain), "\n", "\r\n")), source.FileNormalizedCRLF, []diag.Code{diag.SceneNormalizedCRLF}},
		{"bom", append([]byte("\xEF\xBB\xBF"), plain...), source.FileHadBOM, []diag.Code{diag.SceneStrippedBOM}},
		{
			"both",
			append([]byte("\xEF\xBB\xBF"), strings.ReplaceAll(string(plain), "\n", "\r\n")...),
			source.FileHadBOM | source.FileNormalizedCRLF,
			[]diag.Code{diag.SceneStrippedBOM, diag.SceneNormalizedCRLF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, tt.data, 0o600))

			loaded, err := LoadScene(context.Background(), path, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.flags, loaded.Flags)
			// normalised bytes hash the same as the LF original
			assert.Equal(t, DigestOf(plain), loaded.Hash)

			bag := diag.NewBag(0)
			loaded.ReportNormalization(diag.BagReporter{Bag: bag})
			var codes []diag.Code
			for _, d := range bag.Items() {
				assert.Equal(t, diag.SevInfo, d.Severity)
				assert.Contains(t, d.Message, path)
				codes = append(codes, d.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestLoadScene_CRLFCodeMatchesLF(t *testing.T) {
	plain, err := os.ReadFile(filepath.Join("testdata", "room.json"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "room.json")
	require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(string(plain), "\n", "\r\n")), 0o600))

	want, err := LoadScene(context.Background(), filepath.Join("testdata", "room.json"), nil)
	require.NoError(t, err)
	got, err := LoadScene(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, want.Scene, got.Scene)
}

func TestLoaded_ReportNormalizationOnNil(t *testing.T) {
	bag := diag.NewBag(0)
	var loaded *Loaded
	loaded.ReportNormalization(diag.BagReporter{Bag: bag})
	assert.Zero(t, bag.Len())
}
