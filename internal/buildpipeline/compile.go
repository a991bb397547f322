package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"floatc/internal/diag"
	"floatc/internal/ir"
	"floatc/internal/prog"
	"floatc/internal/session"
	"floatc/internal/trace"
)

// ErrDiagnostics is returned when assembling reported errors and the request
// does not allow them.
var ErrDiagnostics = errors.New("diagnostics reported errors")

// CompileRequest configures assembling and verification of one program.
type CompileRequest struct {
	Program *prog.Program
	// Module replaces assembly with an already built module. It is
	// finalized if needed and verified like an assembled one.
	Module *ir.Module
	// ModuleName defaults to the program name.
	ModuleName            string
	MaxDiagnostics        int
	AllowDiagnosticsError bool
	Progress              ProgressSink
}

// CompileResult captures compilation artefacts and stage timings.
type CompileResult struct {
	Module  *ir.Module
	Session *session.Session
	Bag     *diag.Bag
	// IR is the textual dump of the verified module.
	IR      string
	Timings Timings
}

// Compile assembles the program into a finalized module and verifies it.
// Local failures land in the result Bag; verification failure is fatal.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil || (req.Program == nil && req.Module == nil) {
		return result, fmt.Errorf("missing program")
	}
	name := moduleLabel(req)
	modName := req.ModuleName
	if modName == "" {
		modName = name
	}
	result.Bag = diag.NewBag(req.MaxDiagnostics)

	// assemble
	start := time.Now()
	emitStage(req.Progress, name, StageAssemble, StatusWorking, nil, 0)
	sctx, span := trace.Start(ctx, trace.ScopeStage, string(StageAssemble))
	var mod *ir.Module
	var err error
	if req.Module != nil {
		mod = req.Module
		if !mod.Sealed() {
			err = mod.Finalize()
		}
	} else {
		s := session.New(modName, diag.BagReporter{Bag: result.Bag})
		result.Session = s
		err = prog.Lower(s, req.Program)
		if err == nil {
			mod, err = s.Finalize()
		}
	}
	if err == nil && result.Bag.HasErrors() && !req.AllowDiagnosticsError {
		err = fmt.Errorf("%s: %w", name, ErrDiagnostics)
	}
	result.Timings.Set(StageAssemble, time.Since(start))
	if err != nil {
		span.Fail(err)
		emitStage(req.Progress, name, StageAssemble, StatusError, err, result.Timings.Duration(StageAssemble))
		return result, err
	}
	span.WithExtra("diagnostics", fmt.Sprint(result.Bag.Len())).End("")
	trace.Point(trace.FromContext(sctx), trace.ScopeFunction, "module", fmt.Sprintf("%d funcs", len(mod.Funcs)), span.ID())
	emitStage(req.Progress, name, StageAssemble, StatusDone, nil, result.Timings.Duration(StageAssemble))
	result.Module = mod

	// verify
	start = time.Now()
	emitStage(req.Progress, name, StageVerify, StatusWorking, nil, 0)
	err = Verify(ctx, mod, result.Bag)
	result.Timings.Set(StageVerify, time.Since(start))
	if err != nil {
		err = fmt.Errorf("%s: %w", name, err)
		emitStage(req.Progress, name, StageVerify, StatusError, err, result.Timings.Duration(StageVerify))
		return result, err
	}
	var sb strings.Builder
	if err := ir.DumpModule(&sb, mod); err != nil {
		return result, fmt.Errorf("failed to dump IR: %w", err)
	}
	result.IR = sb.String()
	emitStage(req.Progress, name, StageVerify, StatusDone, nil, result.Timings.Duration(StageVerify))
	return result, nil
}

func moduleLabel(req *CompileRequest) string {
	switch {
	case req.Program != nil:
		return req.Program.Name
	case req.Module != nil:
		return req.Module.Name
	}
	return ""
}

// Verify checks mod and mirrors every finding into bag as a VER2001
// diagnostic. A nil bag only returns the error.
func Verify(ctx context.Context, mod *ir.Module, bag *diag.Bag) error {
	_, span := trace.Start(ctx, trace.ScopeStage, string(StageVerify))
	err := ir.VerifyModule(mod)
	if err != nil {
		if bag != nil {
			reportVerify(bag, err)
		}
		span.Fail(err)
		return fmt.Errorf("verification failed: %w", err)
	}
	span.WithExtra("funcs", fmt.Sprint(len(mod.Funcs))).End("")
	return nil
}

// reportVerify mirrors each verifier finding into bag.
func reportVerify(bag *diag.Bag, err error) {
	r := diag.BagReporter{Bag: bag}
	for _, e := range flattenErrors(err, nil) {
		where := diag.NoLocation
		var ve *ir.VerifyError
		if errors.As(e, &ve) {
			where = diag.Location{Func: ve.Func, Stmt: -1}
		}
		diag.ReportError(r, diag.VerFailed, where, e.Error()).Emit()
	}
}

// flattenErrors collects the leaves of nested errors.Join trees.
func flattenErrors(err error, out []error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = flattenErrors(e, out)
		}
		return out
	}
	if err != nil {
		out = append(out, err)
	}
	return out
}
