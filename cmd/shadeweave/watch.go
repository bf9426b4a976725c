package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"shadeweave/internal/codegen"
	"shadeweave/internal/diag"
	"shadeweave/internal/driver"
	"shadeweave/internal/trace"
)

const watchDebounce = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <scene>",
	Short: "Recompile a scene every time its file changes",
	Long: `Watch compiles the scene, then recompiles it whenever the file is written.
When a change does not compile, its diagnostics are printed and the last
program that compiled stays in use`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addCompilerFlags(watchCmd)
	addOutputFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := readOutputOptions(cmd, cfg, args)
	if err != nil {
		return err
	}
	maxDiags, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	// Editors often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	w := &sceneWatcher{
		path: path,
		out:  cmd.OutOrStdout(),
		opts: opts,
		session: driver.NewSession(cfg.compiler(), driver.Options{
			Generator:      codegen.Generator{Path: path},
			MaxDiagnostics: maxDiags,
		}),
	}
	w.recompile(ctx)
	return w.loop(ctx, watcher)
}

type sceneWatcher struct {
	path    string
	out     io.Writer
	opts    outputOptions
	session *driver.Session
}

// loop debounces change events and recompiles on the calling goroutine, so
// requests never overlap.
func (w *sceneWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) error {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-pending:
			pending = nil
			w.recompile(ctx)
		}
	}
}

func (w *sceneWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	return err == nil && name == w.path
}

func (w *sceneWatcher) recompile(ctx context.Context) {
	ctx = trace.WithScene(ctx, w.path)
	loaded, err := driver.LoadScene(ctx, w.path, nil)
	if err != nil {
		fmt.Fprintf(w.out, "%s: %v\n", w.path, err)
		w.keeping()
		return
	}
	res, err := w.session.Recompile(ctx, loaded.Scene)
	if res != nil {
		loaded.ReportNormalization(diag.BagReporter{Bag: res.Bag})
	}
	if res != nil && res.Bag.Len() > 0 {
		fs := driver.SceneFragments(w.path, loaded.Scene)
		if res.Output != nil {
			fs = res.Output.Fragments
		}
		if rerr := renderDiagnostics(w.out, res.Bag, fs, res, nil, w.opts); rerr != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", rerr)
		}
	}
	switch {
	case err != nil && !errors.Is(err, driver.ErrInvalidScene):
		fmt.Fprintf(w.out, "%s: %v\n", w.path, err)
		w.keeping()
	case err != nil || !res.Compiled:
		w.keeping()
	default:
		warn := ""
		if res.Bag.HasWarnings() {
			warn = " with warnings"
		}
		fmt.Fprintf(w.out, "%s: compiled%s (%s)\n", w.path, warn, w.session.Current().Fingerprint)
	}
}

func (w *sceneWatcher) keeping() {
	if w.session.Current() == nil {
		fmt.Fprintln(w.out, "no program compiled yet")
		return
	}
	fmt.Fprintf(w.out, "keeping previous program (%s)\n", w.session.Current().Fingerprint)
}
