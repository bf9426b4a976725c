package shader

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// Stage names the part of the pipeline a compile failure came from.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
	StageLink
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageLink:
		return "link"
	}
	return "unknown"
}

// Handle is the opaque result of a successful compile.
type Handle struct {
	Fingerprint string
	Tool        string
	CompiledAt  time.Time
}

// CompileError reports that the compiler rejected the program. Log holds the
// compiler's message text verbatim.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader rejected by compiler", e.Stage)
}

var (
	// ErrCompilerMissing marks failures to locate the compiler executable.
	ErrCompilerMissing = errors.New("shader compiler not found")
	// ErrCompilerTimeout marks compiles that exceeded their deadline.
	ErrCompilerTimeout = errors.New("shader compiler timed out")
)

// AsCompileError extracts a *CompileError from err.
func AsCompileError(err error) (*CompileError, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Compiler turns a Program into a Handle. A rejected program yields a
// *CompileError; any other error means the compiler could not run.
type Compiler interface {
	Compile(ctx context.Context, p *Program) (*Handle, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, p *Program) (*Handle, error)

func (f CompilerFunc) Compile(ctx context.Context, p *Program) (*Handle, error) {
	return f(ctx, p)
}
