package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shadeweave/internal/backmap"
	"shadeweave/internal/codegen"
	"shadeweave/internal/diag"
	"shadeweave/internal/driver"
	"shadeweave/internal/shader"
)

var mapCmd = &cobra.Command{
	Use:   "map <scene> <log|->",
	Short: "Map an existing compiler log back to scene fragments",
	Long: `Map reads a shader compiler log, from a file or stdin, and attributes every
diagnostic in it to the scene fragment whose generated lines it points at.
The generated document comes from the cache written by gen when the scene is
unchanged, and is regenerated otherwise`,
	Args: cobra.ExactArgs(2),
	RunE: runMap,
}

func init() {
	mapCmd.Flags().String("stage", "fragment", "pipeline stage the log came from (fragment|vertex|link)")
	mapCmd.Flags().Bool("no-cache", false, "always regenerate the document")
	addOutputFlags(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	scenePath, logPath := args[0], args[1]
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := readOutputOptions(cmd, cfg, args)
	if err != nil {
		return err
	}
	stageName, err := cmd.Flags().GetString("stage")
	if err != nil {
		return fmt.Errorf("failed to get stage flag: %w", err)
	}
	stage, err := parseStage(stageName)
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	maxDiags, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	log, err := readLog(cmd.InOrStdin(), logPath)
	if err != nil {
		return err
	}

	var cache *driver.DiskCache
	if !noCache {
		if cache, err = driver.OpenDiskCache("shadeweave"); err != nil && !opts.quiet {
			fmt.Fprintf(os.Stderr, "warning: document cache unavailable: %v\n", err)
		}
	}
	out, hit, err := driver.Document(cmd.Context(), cache, scenePath, codegen.Generator{})
	if err != nil {
		return err
	}
	if hit && !opts.quiet {
		fmt.Fprintf(os.Stderr, "using cached document for %s\n", scenePath)
	}

	bag := diag.NewBag(maxDiags)
	buckets := driver.Remap(out, stage, log, bag)
	res := &driver.Result{Output: out, Stage: stage, Log: log, Buckets: buckets, Bag: bag}
	if err := renderDiagnostics(cmd.OutOrStdout(), bag, out.Fragments, res, nil, opts); err != nil {
		return err
	}
	if !opts.quiet && opts.format == "pretty" {
		printBucketSummary(os.Stderr, buckets, out)
	}
	if bag.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}

func parseStage(name string) (shader.Stage, error) {
	switch name {
	case "fragment":
		return shader.StageFragment, nil
	case "vertex":
		return shader.StageVertex, nil
	case "link":
		return shader.StageLink, nil
	}
	return 0, fmt.Errorf("invalid --stage value %q (expected fragment|vertex|link)", name)
}

func readLog(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		// #nosec G304 -- path is provided by the user
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read compiler log: %w", err)
	}
	return string(data), nil
}

// printBucketSummary prints how many diagnostics landed in each fragment.
func printBucketSummary(w io.Writer, buckets backmap.Buckets, out *codegen.Output) {
	if buckets.Count() == 0 {
		fmt.Fprintln(w, "no diagnostics in log")
		return
	}
	for _, id := range buckets.IDs() {
		label := "unattributed"
		if !id.IsDefault() {
			label = out.Fragments.Label(id)
		}
		fmt.Fprintf(w, "%4d  %s\n", len(buckets[id]), label)
	}
}
