package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shadeweave/internal/buildpipeline"
	"shadeweave/internal/diagfmt"
)

var checkCmd = &cobra.Command{
	Use:   "check <scene>...",
	Short: "Compile scenes and report diagnostics per fragment",
	Long: `Check validates every scene, generates its shader, runs the shader compiler
and maps the compiler diagnostics back to the objects, materials and library
entries that caused them. The exit status is 1 if any scene has errors`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().IntP("jobs", "j", 0, "max parallel scenes (0=auto)")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	addCompilerFlags(checkCmd)
	addOutputFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := readOutputOptions(cmd, cfg, args)
	if err != nil {
		return err
	}
	if opts.format == "sarif" && len(args) > 1 {
		return fmt.Errorf("sarif output takes a single scene, got %d", len(args))
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	maxDiags, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	req := &buildpipeline.CheckRequest{
		Paths:          args,
		Jobs:           jobs,
		MaxDiagnostics: maxDiags,
		Compiler:       cfg.compiler(),
		Timings:        opts.timings,
	}

	var results []buildpipeline.SceneResult
	if len(args) > 1 && !opts.quiet && shouldUseTUI(mode) {
		results, err = runCheckWithUI(cmd.Context(), "checking scenes", args, req)
	} else {
		results, err = buildpipeline.CheckAll(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	if opts.format == "json" && len(results) > 1 {
		if err := writeCheckJSON(cmd, results, opts); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for i := range results {
			r := &results[i]
			if opts.format == "pretty" || opts.format == "short" {
				if r.Bag.Len() == 0 {
					if !opts.quiet {
						fmt.Fprintf(w, "%s: ok\n", r.Path)
					}
					continue
				}
			}
			if err := renderDiagnostics(w, r.Bag, r.Fragments, r.Result, r.Timer, opts); err != nil {
				return err
			}
		}
	}
	if opts.timings && opts.format != "json" {
		for _, r := range results {
			printStageTimings(os.Stderr, r.Path, r.Timings)
		}
	}

	for i := range results {
		if results[i].Failed() {
			return &exitError{code: 1}
		}
	}
	return nil
}

// writeCheckJSON prints one diagnostics object per scene, keyed by path.
func writeCheckJSON(cmd *cobra.Command, results []buildpipeline.SceneResult, opts outputOptions) error {
	out := make(map[string]diagfmt.DiagnosticsOutput, len(results))
	for _, r := range results {
		r.Bag.Sort()
		d := diagfmt.BuildDiagnosticsOutput(r.Bag, r.Fragments, diagfmt.JSONOpts{
			PathMode:     opts.pathMode,
			IncludeNotes: opts.withNotes,
			IncludeText:  true,
		})
		if opts.timings && r.Timer != nil {
			report := r.Timer.Report()
			d.Timings = &report
		}
		out[r.Path] = d
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
