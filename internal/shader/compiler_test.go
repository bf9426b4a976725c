package shader

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformTypeNames(t *testing.T) {
	assert.Equal(t, "mat4", Mat4.GLSL())
	assert.Equal(t, "float", Float1.GLSL())
	assert.Equal(t, "vec2", Float2.GLSL())
	assert.Equal(t, "int", Int1.GLSL())
}

func TestFingerprintDependsOnBothStages(t *testing.T) {
	a := &Program{Vertex: "v", Fragment: "f"}
	b := &Program{Vertex: "vf", Fragment: ""}
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), (&Program{Vertex: "v", Fragment: "f"}).Fingerprint())
}

func TestAsCompileError(t *testing.T) {
	err := errors.Wrap(&CompileError{Stage: StageFragment, Log: "ERROR: 0:1: x"}, "recompile")
	ce, ok := AsCompileError(err)
	require.True(t, ok)
	assert.Equal(t, "ERROR: 0:1: x", ce.Log)

	_, ok = AsCompileError(errors.New("plain"))
	assert.False(t, ok)
}

func TestExecCompiler_MissingCommand(t *testing.T) {
	c := NewExecCompiler("shadeweave-no-such-compiler", nil, time.Second)
	_, err := c.Compile(context.Background(), &Program{Fragment: "void main() {}"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompilerMissing))
}

// fakeCompiler writes a shell script that behaves like a validator: it fails with
// a glslang-style log whenever the stage file contains "bad".
func fakeCompiler(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script compiler")
	}
	path := filepath.Join(t.TempDir(), "fakeglsl")
	script := "#!/bin/sh\nif grep -q bad \"$1\"; then echo \"ERROR: 0:2: 'bad' : undeclared identifier\"; exit 2; fi\nexit 0\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700))
	return path
}

func TestExecCompiler_AcceptsAndRejects(t *testing.T) {
	c := NewExecCompiler(fakeCompiler(t), nil, 5*time.Second)

	p := &Program{Vertex: "void main() {}", Fragment: "void main() {}"}
	h, err := c.Compile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.Fingerprint(), h.Fingerprint)
	assert.Equal(t, "fakeglsl", h.Tool)

	_, err = c.Compile(context.Background(), &Program{Vertex: "void main() {}", Fragment: "x\nbad\n"})
	ce, ok := AsCompileError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, StageFragment, ce.Stage)
	assert.Equal(t, "ERROR: 0:2: 'bad' : undeclared identifier", ce.Log)
}

func TestCompilerFunc(t *testing.T) {
	var seen *Program
	c := CompilerFunc(func(_ context.Context, p *Program) (*Handle, error) {
		seen = p
		return &Handle{Fingerprint: p.Fingerprint()}, nil
	})
	p := &Program{Fragment: "f"}
	_, err := c.Compile(context.Background(), p)
	require.NoError(t, err)
	assert.Same(t, p, seen)
}
