package main

import (
	"fmt"
	"io"
	"time"

	"shadeweave/internal/buildpipeline"
)

var timedStages = []struct {
	stage buildpipeline.Stage
	label string
}{
	{buildpipeline.StageLoad, "loaded"},
	{buildpipeline.StageValidate, "validated"},
	{buildpipeline.StageGenerate, "generated"},
	{buildpipeline.StageCompile, "compiled"},
	{buildpipeline.StageBackmap, "mapped"},
}

// printStageTimings writes one line per stage that ran.
func printStageTimings(out io.Writer, path string, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	fmt.Fprintf(out, "%s:\n", path)
	for _, s := range timedStages {
		if timings.Has(s.stage) {
			fmt.Fprintf(out, "  %-10s %7.1f ms\n", s.label, toMillis(timings.Duration(s.stage)))
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
