// Package buildpipeline orchestrates the compilation process: assembling a
// program into IR, verifying it, lowering it for a target and writing the
// object file.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"floatc/internal/backend"
	"floatc/internal/diag"
	"floatc/internal/target"
	"floatc/internal/trace"
)

// DefaultOutput is the object path used when none is requested.
const DefaultOutput = "output.o"

// BuildRequest configures output generation for a compilation.
type BuildRequest struct {
	CompileRequest
	LowerRequest
	OutputPath string
	// EmitIR writes the IR dump next to the object (.ir).
	EmitIR bool
	// EmitLLVM writes the LLVM assembly next to the object (.ll).
	EmitLLVM bool
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	OutputPath string
	Compile    CompileResult
	Lower      LowerResult
	Timings    Timings
	// Err is the build error; set by BuildAll.
	Err error
}

// Build compiles, lowers and writes one program. The object file appears at
// OutputPath only if every stage succeeded.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	reqCopy := *req
	req = &reqCopy
	if req.OutputPath == "" {
		req.OutputPath = DefaultOutput
	}
	result.OutputPath = req.OutputPath

	name := moduleLabel(&req.CompileRequest)
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build:"+name)
	defer span.End(req.OutputPath)

	compileRes, err := Compile(ctx, &req.CompileRequest)
	result.Compile = compileRes
	result.Timings.Merge(compileRes.Timings)
	if err != nil {
		return result, err
	}
	bag := compileRes.Bag

	start := time.Now()
	emitStage(req.Progress, name, StageLower, StatusWorking, nil, 0)
	lowerRes, err := Lower(ctx, compileRes.Module, req.LowerRequest)
	result.Lower = lowerRes
	elapsed := time.Since(start)
	result.Timings.Set(StageLower, elapsed)
	if err != nil {
		reportLower(bag, err)
		stage := StageLower
		if lowerRes.Machine != nil {
			stage = StageEmit
		}
		emitStage(req.Progress, name, stage, StatusError, err, elapsed)
		return result, err
	}
	emitStage(req.Progress, name, StageLower, StatusDone, nil, elapsed)
	emitStage(req.Progress, name, StageEmit, StatusDone, nil, elapsed)
	if lowerRes.CacheErr != nil {
		diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.IOCacheError, diag.NoLocation, lowerRes.CacheErr.Error()).Emit()
	}

	start = time.Now()
	emitStage(req.Progress, name, StageWrite, StatusWorking, nil, 0)
	_, wspan := trace.Start(ctx, trace.ScopeStage, string(StageWrite))
	err = writeOutputs(req, compileRes, lowerRes)
	result.Timings.Set(StageWrite, time.Since(start))
	if err != nil {
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOWriteError, diag.NoLocation, err.Error()).Emit()
		wspan.Fail(err)
		emitStage(req.Progress, name, StageWrite, StatusError, err, result.Timings.Duration(StageWrite))
		return result, err
	}
	wspan.End(req.OutputPath)
	emitStage(req.Progress, name, StageWrite, StatusDone, nil, result.Timings.Duration(StageWrite))
	return result, nil
}

func writeOutputs(req *BuildRequest, c CompileResult, l LowerResult) error {
	base := strings.TrimSuffix(req.OutputPath, filepath.Ext(req.OutputPath))
	if req.EmitIR {
		if err := WriteFileAtomic(base+".ir", []byte(c.Module.String()), 0o644); err != nil {
			return err
		}
	}
	if req.EmitLLVM {
		var text string
		var err error
		if te, ok := l.Machine.(backend.TextEmitter); ok {
			text, err = te.EmitText(c.Module)
		} else {
			text, err = backend.LLVMText(c.Module)
		}
		if err != nil {
			return fmt.Errorf("LLVM emit failed: %w", err)
		}
		if err := WriteFileAtomic(base+".ll", []byte(text), 0o644); err != nil {
			return err
		}
	}
	return WriteFileAtomic(req.OutputPath, l.Object, 0o644)
}

// reportLower mirrors a lowering failure into bag with a matching code.
func reportLower(bag *diag.Bag, err error) {
	code := diag.TgtEmitFailed
	var unk *target.UnknownTargetError
	switch {
	case errors.As(err, &unk):
		code = diag.TgtUnknown
	case errors.Is(err, backend.ErrUnsupportedTarget):
		code = diag.TgtUnsupported
	}
	diag.ReportError(diag.BagReporter{Bag: bag}, code, diag.NoLocation, err.Error()).Emit()
}

// WriteFileAtomic writes data to a temp file in the destination directory and
// renames it into place. On failure the destination is left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %q: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// BuildAll runs independent builds with at most jobs in flight. Each build
// gets its own session; a failure does not stop the others. The returned
// error joins every failure.
func BuildAll(ctx context.Context, reqs []*BuildRequest, jobs int) ([]BuildResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, req := range reqs {
		if req != nil {
			emitStage(req.Progress, moduleLabel(&req.CompileRequest), StageAssemble, StatusQueued, nil, 0)
		}
	}
	results := make([]BuildResult, len(reqs))
	errs := make([]error, len(reqs))

	var g errgroup.Group
	g.SetLimit(max(1, min(jobs, len(reqs))))
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err, errs[i] = err, err
				return nil
			}
			results[i], errs[i] = Build(ctx, req)
			results[i].Err = errs[i]
			return nil
		})
	}
	_ = g.Wait() // jobs report through errs
	return results, errors.Join(errs...)
}
