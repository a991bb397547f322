// Package trace records spans and point events emitted while programs are
// assembled, verified and lowered to object code.
//
// A Tracer travels through the pipeline inside a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "verify", 0)
//	defer span.End("")
//
// Verbosity is selected by Level and each event carries a Scope. LevelPhase
// keeps driver and stage boundaries, LevelDetail adds per-function events and
// LevelDebug keeps everything including per-instruction selection.
package trace
