package driver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"shadeweave/internal/backmap"
	"shadeweave/internal/codegen"
	"shadeweave/internal/diag"
	"shadeweave/internal/observ"
	"shadeweave/internal/scene"
	"shadeweave/internal/shader"
	"shadeweave/internal/trace"
)

var (
	// ErrInvalidScene marks scenes rejected by validation; the result Bag says why.
	ErrInvalidScene = errors.New("scene has errors")
	// ErrNoDocument is returned by Remap before anything was generated.
	ErrNoDocument = errors.New("no generated document")
)

// Options configures a Session.
type Options struct {
	Generator      codegen.Generator
	MaxDiagnostics int
	// Timer, when set, records the duration of every phase.
	Timer *observ.Timer
	// Observer, when set, is told about phase boundaries.
	Observer PhaseObserver
}

// Result is the outcome of one recompile request.
type Result struct {
	// Output is the generated document, nil when the scene did not validate.
	Output *codegen.Output
	// Compiled is true when the compiler accepted Output.
	Compiled bool
	// Stage and Log describe the rejection when Compiled is false.
	Stage shader.Stage
	Log   string
	// Buckets holds the compiler diagnostics routed to their fragments.
	Buckets backmap.Buckets
	// Bag holds validation and compiler diagnostics for display.
	Bag *diag.Bag
}

// Code returns the generated fragment shader, or "" if there is none.
func (r *Result) Code() string {
	if r == nil || r.Output == nil {
		return ""
	}
	return r.Output.Code
}

// Session runs recompile requests for one scene. It owns the compiled program
// that is currently in use and the last generated document. A Session is not
// safe for concurrent use; requests are processed one at a time.
type Session struct {
	compiler shader.Compiler
	opts     Options

	current *shader.Handle
	last    *codegen.Output
}

// NewSession creates a session compiling with c.
func NewSession(c shader.Compiler, opts Options) *Session {
	return &Session{compiler: c, opts: opts}
}

// Current returns the handle of the program in use, nil before the first
// successful compile.
func (s *Session) Current() *shader.Handle { return s.current }

// Last returns the last generated document, nil before the first generation.
func (s *Session) Last() *codegen.Output { return s.last }

// Recompile validates sc, generates its shader, compiles it and back-maps the
// compiler diagnostics. A program the compiler rejects is not an error: the
// result carries the code, the log and the buckets, and the previous program
// stays current. Errors are returned for invalid scenes (with a Result holding
// the validation diagnostics), generation failures and compilers that could
// not run.
func (s *Session) Recompile(ctx context.Context, sc *scene.Scene) (*Result, error) {
	if sc == nil {
		return nil, errors.AssertionFailedf("nil scene")
	}
	span, ctx := trace.StartSpan(ctx, trace.ScopeDriver, "recompile")
	res := &Result{Bag: diag.NewBag(s.opts.MaxDiagnostics), Buckets: make(backmap.Buckets)}
	defer func() {
		span.WithExtra("compiled", strconv.FormatBool(res.Compiled)).End("")
	}()

	valid := true
	_ = s.phase(ctx, "validate", func(context.Context) error {
		valid = scene.Validate(sc, diag.BagReporter{Bag: res.Bag})
		return nil
	})
	if !valid {
		return res, errors.Mark(errors.Newf("%d validation diagnostics", res.Bag.Len()), ErrInvalidScene)
	}

	var out *codegen.Output
	err := s.phase(ctx, "generate", func(ctx context.Context) error {
		var err error
		out, err = s.opts.Generator.GenerateContext(ctx, sc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	s.last = out
	res.Output = out

	var handle *shader.Handle
	err = s.phase(ctx, "compile", func(ctx context.Context) error {
		var err error
		handle, err = s.compiler.Compile(ctx, out.Program)
		return err
	})
	if err == nil {
		s.current = handle
		res.Compiled = true
		return res, nil
	}
	ce, ok := shader.AsCompileError(err)
	if !ok {
		return nil, fmt.Errorf("compile: %w", err)
	}

	res.Stage, res.Log = ce.Stage, ce.Log
	_ = s.phase(ctx, "backmap", func(context.Context) error {
		res.Buckets = Remap(out, ce.Stage, ce.Log, res.Bag)
		return nil
	})
	return res, nil
}

// Remap back-maps a compiler log produced outside the session against the last
// generated document.
func (s *Session) Remap(ctx context.Context, log string) (*Result, error) {
	if s.last == nil {
		return nil, ErrNoDocument
	}
	span, _ := trace.StartSpan(ctx, trace.ScopePass, "backmap")
	defer span.End("")

	res := &Result{Output: s.last, Stage: shader.StageFragment, Log: log, Bag: diag.NewBag(s.opts.MaxDiagnostics)}
	res.Buckets = Remap(s.last, shader.StageFragment, log, res.Bag)
	return res, nil
}

func (s *Session) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	span, ctx := trace.StartSpan(ctx, trace.ScopePass, name)
	if s.opts.Observer != nil {
		s.opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	start := time.Now()
	err := s.opts.Timer.Measure(name, func() error { return fn(ctx) })
	elapsed := time.Since(start)
	span.EndErr(err)
	if s.opts.Observer != nil {
		s.opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: elapsed, Err: err})
	}
	return err
}
