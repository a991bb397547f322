package buildpipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageAssemble lowers the program statements into IR.
	StageAssemble Stage = "assemble"
	// StageVerify checks the finalized module.
	StageVerify Stage = "verify"
	// StageLower resolves the target and the backend machine.
	StageLower Stage = "lower"
	// StageEmit runs code generation.
	StageEmit Stage = "emit"
	// StageWrite stores the object file.
	StageWrite Stage = "write"
)

// Stages lists the pipeline phases in execution order.
func Stages() []Stage {
	return []Stage{StageAssemble, StageVerify, StageLower, StageEmit, StageWrite}
}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one program.
type Event struct {
	Program string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations used with BuildAll
// must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

func emitStage(sink ProgressSink, program string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Program: program, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Merge copies every stage recorded in other.
func (t *Timings) Merge(other Timings) {
	for stage, dur := range other.stages {
		t.Set(stage, dur)
	}
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
