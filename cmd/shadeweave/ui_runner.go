package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"shadeweave/internal/buildpipeline"
	"shadeweave/internal/ui"
)

type checkOutcome struct {
	results []buildpipeline.SceneResult
	err     error
}

func runCheckWithUI(ctx context.Context, title string, files []string, req *buildpipeline.CheckRequest) ([]buildpipeline.SceneResult, error) {
	if req == nil {
		return nil, fmt.Errorf("missing check request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.CheckAll(ctx, &reqCopy)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
