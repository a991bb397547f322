package main

import (
	"io"

	"github.com/spf13/cobra"

	"floatc/internal/buildpipeline"
	"floatc/internal/observ"
)

func timingsEnabled(cmd *cobra.Command) bool {
	on, _ := cmd.Root().PersistentFlags().GetBool("timings")
	return on
}

// recordStageTimings adds every recorded pipeline stage to timer.
func recordStageTimings(timer *observ.Timer, prefix string, timings buildpipeline.Timings, note string) {
	for _, stage := range buildpipeline.Stages() {
		if !timings.Has(stage) {
			continue
		}
		name := string(stage)
		if prefix != "" {
			name = prefix + "/" + name
		}
		stageNote := ""
		if stage == buildpipeline.StageLower {
			stageNote = note
		}
		timer.Add(name, timings.Duration(stage), stageNote)
	}
}

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	_, _ = io.WriteString(out, timer.Summary())
}
