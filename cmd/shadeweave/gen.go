package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shadeweave/internal/codegen"
	"shadeweave/internal/diag"
	"shadeweave/internal/driver"
	"shadeweave/internal/observ"
	"shadeweave/internal/scene"
	"shadeweave/internal/trace"
)

var genCmd = &cobra.Command{
	Use:   "gen <scene>",
	Short: "Generate the fragment shader of a scene",
	Long: `Generate validates a scene and prints the composed fragment shader.
The generated document is stored in the user cache so that map can reuse it`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().StringP("output", "o", "", "write the shader to this file instead of stdout")
	genCmd.Flags().Bool("index", false, "print the provenance index instead of the shader")
	genCmd.Flags().Bool("numbered", false, "prefix every shader line with its number")
	genCmd.Flags().Bool("no-cache", false, "do not write the document cache")
	genCmd.Flags().Bool("clear-cache", false, "drop every cached document before writing this one")
	addOutputFlags(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := readOutputOptions(cmd, cfg, args)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	showIndex, err := cmd.Flags().GetBool("index")
	if err != nil {
		return fmt.Errorf("failed to get index flag: %w", err)
	}
	numbered, err := cmd.Flags().GetBool("numbered")
	if err != nil {
		return fmt.Errorf("failed to get numbered flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	maxDiags, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	var timer *observ.Timer
	if opts.timings {
		timer = observ.NewTimer()
	}
	ctx := trace.WithScene(cmd.Context(), path)
	loaded, err := driver.LoadScene(ctx, path, timer)
	if err != nil {
		return err
	}

	bag := diag.NewBag(maxDiags)
	loaded.ReportNormalization(diag.BagReporter{Bag: bag})
	var valid bool
	_ = timer.Measure("validate", func() error {
		valid = scene.Validate(loaded.Scene, diag.BagReporter{Bag: bag})
		return nil
	})
	if bag.Len() > 0 {
		fs := driver.SceneFragments(path, loaded.Scene)
		if err := renderDiagnostics(os.Stderr, bag, fs, nil, nil, opts); err != nil {
			return err
		}
	}
	if !valid {
		return &exitError{code: 1}
	}

	var out *codegen.Output
	err = timer.Measure("generate", func() error {
		var err error
		out, err = codegen.Generator{Path: path}.GenerateContext(ctx, loaded.Scene)
		return err
	})
	if err != nil {
		return fmt.Errorf("generate %s: %w", path, err)
	}

	if !noCache {
		cache, err := driver.OpenDiskCache("shadeweave")
		if err == nil && clearCache {
			err = cache.DropAll()
		}
		if err == nil {
			err = cache.Put(driver.KeyFor(path), driver.PayloadFromOutput(path, loaded.Hash, out))
		}
		if err != nil && !opts.quiet {
			fmt.Fprintf(os.Stderr, "warning: document cache not written: %v\n", err)
		}
	}

	w := cmd.OutOrStdout()
	if outPath != "" {
		// #nosec G304 -- path is provided by the user
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	if showIndex {
		writeIndex(w, out)
	} else {
		writeCode(w, out.Code, numbered)
	}
	if opts.timings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	return nil
}

func writeCode(w io.Writer, code string, numbered bool) {
	if !numbered {
		fmt.Fprint(w, code)
		if !strings.HasSuffix(code, "\n") {
			fmt.Fprintln(w)
		}
		return
	}
	lines := strings.Split(strings.TrimSuffix(code, "\n"), "\n")
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		fmt.Fprintf(w, "%*d | %s\n", width, i+1, line)
	}
}

// writeIndex prints one row per fragment: ID, generated lines and name.
func writeIndex(w io.Writer, out *codegen.Output) {
	for id, lines := range out.Index.All() {
		fmt.Fprintf(w, "%-12s %-12s %s\n", id, lines, out.Fragments.Label(id))
	}
}
