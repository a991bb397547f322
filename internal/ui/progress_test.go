package ui

import (
	"errors"
	"strings"
	"testing"

	"floatc/internal/buildpipeline"
)

func TestApplyEventTracksPrograms(t *testing.T) {
	m := NewProgressModel("floatc build", []string{"arith", "vars"}, nil).(*progressModel)

	events := []buildpipeline.Event{
		{Program: "arith", Stage: buildpipeline.StageAssemble, Status: buildpipeline.StatusWorking},
		{Program: "arith", Stage: buildpipeline.StageVerify, Status: buildpipeline.StatusDone},
		{Program: "vars", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusError, Err: errors.New("boom")},
		{Program: "vars", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone},
		{Program: "ghost", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone},
	}
	for _, ev := range events {
		m.applyEvent(ev)
	}

	if got := m.items[0].status; got != "verifying" {
		t.Errorf("arith status = %q, want verifying", got)
	}
	if got := m.items[1].status; got != "error" {
		t.Errorf("vars status = %q, want error (errors are sticky)", got)
	}
	if m.failed != 1 {
		t.Errorf("failed = %d, want 1", m.failed)
	}
	want := (progressFromStage(buildpipeline.StageVerify) + 1.0) / 2
	if got := m.percent(); got != want {
		t.Errorf("percent = %v, want %v", got, want)
	}

	m.applyEvent(buildpipeline.Event{Program: "arith", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone})
	if m.items[0].status != "done" {
		t.Errorf("arith should be done after write")
	}
	view := m.View()
	if !strings.Contains(view, "1 failed") || !strings.Contains(view, "arith") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a-very-long-program-name", 10, "a-very-..."},
		{"abcdef", 3, "abc"},
		{"any", 0, "any"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
