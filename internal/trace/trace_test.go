package trace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"floatc/internal/trace"
)

func TestStreamTracer_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelPhase, trace.FormatText)

	stage := trace.Begin(tr, trace.ScopeStage, "verify", 0)
	fn := trace.Begin(tr, trace.ScopeFunction, "func:main", stage.ID())
	fn.End("")
	stage.End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ verify") || !strings.Contains(out, "← verify (ok)") {
		t.Errorf("missing stage events:\n%s", out)
	}
	if strings.Contains(out, "func:main") {
		t.Errorf("function scope leaked at phase level:\n%s", out)
	}
}

func TestStreamTracer_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelError, trace.FormatText)

	trace.Begin(tr, trace.ScopeStage, "assemble", 0).End("")
	trace.Begin(tr, trace.ScopeStage, "lower", 0).Fail(errors.New("unknown target"))

	out := buf.String()
	if strings.Contains(out, "assemble") {
		t.Errorf("successful span emitted at error level:\n%s", out)
	}
	if !strings.Contains(out, "← lower {error=unknown target}") {
		t.Errorf("failing span missing:\n%s", out)
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := trace.New(trace.Config{Level: trace.LevelDebug, Format: trace.FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	trace.Point(tr, trace.ScopeInstr, "isel", "fadd", 0)

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["scope"] != "instr" || ev["detail"] != "fadd" {
		t.Errorf("unexpected event: %v", ev)
	}
}

func TestContext(t *testing.T) {
	if trace.FromContext(context.Background()) != trace.Nop {
		t.Fatal("expected Nop without tracer")
	}
	tr := trace.NewStreamTracer(&bytes.Buffer{}, trace.LevelDebug, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)
	if trace.FromContext(ctx) != trace.Tracer(tr) {
		t.Fatal("tracer not propagated")
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		lvl, err := trace.ParseLevel(s)
		if err != nil || lvl.String() != s {
			t.Errorf("ParseLevel(%q) = %v, %v", s, lvl, err)
		}
	}
	if _, err := trace.ParseLevel("loud"); err == nil {
		t.Error("expected error")
	}
}

func TestStart_Nested(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatNDJSON)
	ctx := trace.WithTracer(context.Background(), tr)

	ctx, outer := trace.Start(ctx, trace.ScopeDriver, "build")
	_, inner := trace.Start(ctx, trace.ScopeStage, "emit")
	inner.End("")
	outer.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d events, want 4", len(lines))
	}
	var ev struct {
		Name     string `json:"name"`
		ParentID uint64 `json:"parent_id"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Name != "emit" || ev.ParentID != outer.ID() {
		t.Errorf("inner span = %+v, want parent %d", ev, outer.ID())
	}
}
