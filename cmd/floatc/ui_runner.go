package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"floatc/internal/buildpipeline"
	"floatc/internal/ui"
)

type buildAllOutcome struct {
	results []buildpipeline.BuildResult
	err     error
}

// runBuildAllWithUI runs BuildAll while a progress view consumes its events.
func runBuildAllWithUI(ctx context.Context, title string, reqs []*buildpipeline.BuildRequest, jobs int) ([]buildpipeline.BuildResult, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan buildAllOutcome, 1)

	names := make([]string, 0, len(reqs))
	withSink := make([]*buildpipeline.BuildRequest, len(reqs))
	for i, req := range reqs {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		withSink[i] = &reqCopy
		names = append(names, req.Program.Name)
	}

	go func() {
		res, err := buildpipeline.BuildAll(ctx, withSink, jobs)
		outcomeCh <- buildAllOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
