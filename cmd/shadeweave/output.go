package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"shadeweave/internal/diag"
	"shadeweave/internal/diagfmt"
	"shadeweave/internal/driver"
	"shadeweave/internal/observ"
	"shadeweave/internal/source"
	"shadeweave/internal/version"
)

type outputOptions struct {
	format      string
	color       bool
	showSource  bool
	withNotes   bool
	minSeverity diag.Severity
	pathMode    diagfmt.PathMode
	quiet       bool
	timings     bool
	args        []string
}

func readOutputOptions(cmd *cobra.Command, cfg projectConfig, args []string) (outputOptions, error) {
	opts := outputOptions{
		format:     cfg.Output.Format,
		showSource: cfg.Output.ShowSource,
		pathMode:   diagfmt.PathModeAuto,
		args:       args,
	}
	var err error
	if opts.minSeverity, err = diag.ParseSeverity(cfg.Output.MinSeverity); err != nil {
		return opts, err
	}
	if opts.color, err = useColor(cmd, os.Stdout); err != nil {
		return opts, err
	}
	if opts.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if fullPath {
		opts.pathMode = diagfmt.PathModeAbsolute
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return opts, nil
}

func maxDiagnostics(cmd *cobra.Command) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return n, nil
}

// renderDiagnostics prints bag in the selected format, dropping diagnostics
// below the minimum severity. res may be nil; when it carries a rejected
// program, ShowSource adds the generated code and the raw compiler log to
// pretty output. timer only feeds the JSON timings field.
func renderDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FragmentSet, res *driver.Result, timer *observ.Timer, opts outputOptions) error {
	if opts.minSeverity > diag.SevInfo {
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= opts.minSeverity })
	}
	bag.Sort()
	switch opts.format {
	case "json":
		var report *observ.Report
		if opts.timings && timer != nil {
			r := timer.Report()
			report = &r
		}
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			PathMode:     opts.pathMode,
			IncludeNotes: opts.withNotes,
			IncludeText:  true,
		}, report)
	case "sarif":
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "shadeweave",
			ToolVersion:    version.Version,
			InvocationArgs: opts.args,
		})
	case "short":
		diagfmt.Short(w, bag, fs, opts.pathMode, opts.withNotes)
	default:
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   1,
			PathMode:  opts.pathMode,
			ShowNotes: opts.withNotes,
		})
		if opts.showSource && res != nil && res.Output != nil && !res.Compiled {
			if len(res.Buckets.Unattributed()) > 0 {
				fmt.Fprintln(w)
				diagfmt.GeneratedSource(w, res.Output.Code, unattributedLines(res), opts.color)
				fmt.Fprintln(w)
				diagfmt.RawLog(w, res.Log, opts.color)
			}
		}
	}
	return nil
}

func unattributedLines(res *driver.Result) []int {
	var lines []int
	for _, l := range res.Buckets.Unattributed() {
		if l.HasLine() {
			lines = append(lines, l.Line)
		}
	}
	slices.Sort(lines)
	return slices.Compact(lines)
}
