package shader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"shadeweave/internal/trace"
)

// DefaultCommand is the reference GLSL front end.
const DefaultCommand = "glslangValidator"

// ExecCompiler validates programs by running an external compiler once per stage.
// The stage file path is appended after Args.
type ExecCompiler struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewExecCompiler returns a compiler for command; empty command means DefaultCommand.
func NewExecCompiler(command string, args []string, timeout time.Duration) *ExecCompiler {
	if command == "" {
		command = DefaultCommand
	}
	return &ExecCompiler{Command: command, Args: args, Timeout: timeout}
}

func (c *ExecCompiler) Compile(ctx context.Context, p *Program) (*Handle, error) {
	if p == nil {
		return nil, errors.AssertionFailedf("nil program")
	}
	bin, err := exec.LookPath(c.Command)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "look up %q", c.Command), ErrCompilerMissing)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp("", "shadeweave-*")
	if err != nil {
		return nil, errors.Wrap(err, "create work dir")
	}
	defer os.RemoveAll(dir)

	stages := []struct {
		stage Stage
		file  string
		text  string
	}{
		{StageVertex, "program.vert", p.Vertex},
		{StageFragment, "program.frag", p.Fragment},
	}
	for _, st := range stages {
		if st.text == "" {
			continue
		}
		path := filepath.Join(dir, st.file)
		if err := os.WriteFile(path, []byte(st.text), 0o600); err != nil {
			return nil, errors.Wrapf(err, "write %s stage", st.stage)
		}
		if err := c.run(ctx, bin, path, st.stage); err != nil {
			return nil, err
		}
	}
	return &Handle{Fingerprint: p.Fingerprint(), Tool: filepath.Base(bin), CompiledAt: time.Now()}, nil
}

func (c *ExecCompiler) run(ctx context.Context, bin, path string, stage Stage) error {
	args := append(append([]string(nil), c.Args...), path)
	// #nosec G204 -- the compiler command comes from user configuration
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "run %s", filepath.Base(bin))
	}
	span, _ := trace.StartSpan(ctx, trace.ScopePass, fmt.Sprintf("%s %s pid %d", filepath.Base(bin), stage, cmd.Process.Pid))
	err := cmd.Wait()
	span.EndErr(err)
	if ctx.Err() != nil {
		return errors.Mark(errors.Wrapf(ctx.Err(), "%s stage", stage), ErrCompilerTimeout)
	}
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CompileError{Stage: stage, Log: strings.TrimRight(out.String(), "\n")}
	}
	return errors.Wrapf(err, "run %s", filepath.Base(bin))
}
