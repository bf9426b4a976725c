// Package buildpipeline checks several scenes concurrently and reports progress.
package buildpipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"shadeweave/internal/codegen"
	"shadeweave/internal/diag"
	"shadeweave/internal/driver"
	"shadeweave/internal/observ"
	"shadeweave/internal/shader"
	"shadeweave/internal/source"
	"shadeweave/internal/trace"
)

// CheckRequest configures CheckAll.
type CheckRequest struct {
	Paths          []string
	Jobs           int
	MaxDiagnostics int
	// Compiler is shared by all scenes and must be safe for concurrent use.
	Compiler  shader.Compiler
	Generator codegen.Generator
	Progress  ProgressSink
	// Timings enables per-scene phase timers.
	Timings bool
}

// SceneResult is the outcome of checking one scene.
type SceneResult struct {
	Path string
	// Result is nil when the scene could not be loaded or generated.
	Result *driver.Result
	// Bag holds every diagnostic of the scene, including load failures.
	Bag *diag.Bag
	// Fragments labels the diagnostics in Bag.
	Fragments *source.FragmentSet
	// Err is set when the scene could not be checked at all.
	Err     error
	Timings Timings
	Timer   *observ.Timer
}

// Failed reports whether the scene has errors.
func (r *SceneResult) Failed() bool {
	return r.Err != nil || r.Bag.HasErrors()
}

// CheckAll checks every scene of req on its own session, at most req.Jobs at a
// time. Results are returned in the order of req.Paths. The error is non-nil
// only if ctx was cancelled.
func CheckAll(ctx context.Context, req *CheckRequest) ([]SceneResult, error) {
	if req == nil {
		return nil, fmt.Errorf("missing check request")
	}
	if req.Compiler == nil {
		return nil, fmt.Errorf("missing shader compiler")
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	emitQueued(req.Progress, req.Paths)
	results := make([]SceneResult, len(req.Paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(req.Paths))))
	for i, path := range req.Paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = checkOne(gctx, req, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		emitStage(req.Progress, "", StageCompile, StatusError, err, 0)
		return results, err
	}
	emitStage(req.Progress, "", StageBackmap, StatusDone, nil, 0)
	return results, nil
}

func checkOne(ctx context.Context, req *CheckRequest, path string) SceneResult {
	ctx = trace.WithScene(ctx, path)
	span, ctx := trace.StartSpan(ctx, trace.ScopeDriver, "check")
	defer span.End("")

	res := SceneResult{Path: path, Bag: diag.NewBag(req.MaxDiagnostics)}
	if req.Timings {
		res.Timer = observ.NewTimer()
	}
	start := time.Now()

	emitStage(req.Progress, path, StageLoad, StatusWorking, nil, 0)
	loaded, err := driver.LoadScene(ctx, path, res.Timer)
	res.Timings.Set(StageLoad, time.Since(start))
	if err != nil {
		res.Err = err
		res.Bag.Add(diag.NewError(diag.IOLoadSceneFailed, diag.Nowhere(), err.Error()))
		res.Fragments = source.NewFragmentSet(path)
		emitStage(req.Progress, path, StageLoad, StatusError, err, time.Since(start))
		return res
	}

	loaded.ReportNormalization(diag.BagReporter{Bag: res.Bag})

	observer := &phaseObserver{sink: req.Progress, file: path, timings: &res.Timings}
	gen := req.Generator
	gen.Path = path
	session := driver.NewSession(req.Compiler, driver.Options{
		Generator:      gen,
		MaxDiagnostics: req.MaxDiagnostics,
		Timer:          res.Timer,
		Observer:       observer.OnPhase,
	})

	result, err := session.Recompile(ctx, loaded.Scene)
	res.Result = result
	if result != nil {
		res.Bag.Merge(result.Bag)
	}
	switch {
	case result != nil && result.Output != nil:
		res.Fragments = result.Output.Fragments
	default:
		res.Fragments = driver.SceneFragments(path, loaded.Scene)
	}
	if err != nil {
		res.Err = err
	}

	status := StatusDone
	if res.Failed() {
		status = StatusError
	}
	emitStage(req.Progress, path, observer.last, status, res.Err, time.Since(start))
	return res
}

// phaseObserver turns session phases into progress events for one scene.
type phaseObserver struct {
	sink    ProgressSink
	file    string
	timings *Timings
	last    Stage
}

func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage := Stage(ev.Name)
	switch ev.Status {
	case driver.PhaseStart:
		p.last = stage
		emitStage(p.sink, p.file, stage, StatusWorking, nil, 0)
	case driver.PhaseEnd:
		p.timings.Set(stage, ev.Elapsed)
	}
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
