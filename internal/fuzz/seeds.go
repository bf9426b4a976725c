package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10 // 64 KiB

var logSeeds = []string{
	"",
	"ERROR: 0:13: 'foo' : undeclared identifier\nERROR: 1 compilation errors.  No code generated.\n",
	"WARNING: 0:2: '' : extension not supported\n",
	"0:7(12): error: `x' undeclared\n0:8(1): warning: unused\n",
	"0(42) : error C0000: syntax error, unexpected '}'\n",
	"ERROR: 0:99999999999999999999: overflow\n",
	"garbage without a location\r\n\r\n",
}

var templateSeeds = []string{
	"",
	"void main() {}\n",
	"//%uniforms//%\n//%textures//%\n",
	"head\n//%uniforms//%tail",
	"//%uniforms",
	"//%uniforms//%//%uniforms//%",
}

// addSceneSeeds adds every scene document found in the repository test data.
func addSceneSeeds(f *testing.F) {
	root := filepath.Join("..", "driver", "testdata")
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	f.Add([]byte("{}"))
	f.Add([]byte(`{"objects":[{"name":"a","code":"return 1.0;"}]}`))
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
