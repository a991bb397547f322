package buildpipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"floatc/internal/backend"
	"floatc/internal/ir"
	"floatc/internal/objcache"
	"floatc/internal/target"
	"floatc/internal/trace"
)

// LowerRequest selects the target and backend for a verified module.
type LowerRequest struct {
	// Triple defaults to the host triple.
	Triple  string
	Backend backend.Kind
	// Cache is consulted before code generation when set.
	Cache *objcache.Cache
	// Commands receives external tool invocations.
	Commands io.Writer
}

// LowerResult carries the object bytes and how they were produced.
type LowerResult struct {
	Object  []byte
	Target  *target.Descriptor
	Machine backend.Machine
	Cached  bool
	// CacheErr is a non-fatal cache read or write failure.
	CacheErr error
}

// Lower resolves the target, attaches it to mod and runs code generation.
// mod is verified first and rejected untouched if it is malformed. Every step
// is attempted once; the first failure aborts.
func Lower(ctx context.Context, mod *ir.Module, req LowerRequest) (LowerResult, error) {
	var result LowerResult
	if mod == nil {
		return result, fmt.Errorf("missing module")
	}
	triple := strings.TrimSpace(req.Triple)
	if triple == "" {
		triple = target.HostTriple()
	}
	ctx, span := trace.Start(ctx, trace.ScopeStage, string(StageLower))
	if err := ir.VerifyModule(mod); err != nil {
		span.Fail(err)
		return result, fmt.Errorf("refusing to lower %q: %w", mod.Name, err)
	}
	desc, err := target.Lookup(triple)
	if err != nil {
		span.Fail(err)
		return result, err
	}
	machine, err := backend.Resolve(desc, req.Backend, backend.Options{Commands: req.Commands})
	if err != nil {
		span.Fail(err)
		return result, err
	}
	result.Target = desc
	result.Machine = machine
	mod.SetTarget(desc.Name(), desc.DataLayout)
	span.WithExtra("target", desc.Name()).WithExtra("backend", machine.Name()).End("")

	_, span = trace.Start(ctx, trace.ScopeStage, string(StageEmit))
	var key objcache.Digest
	if req.Cache != nil {
		key = objcache.Key(mod.String(), desc.Name(), machine.Name())
		entry, ok, err := req.Cache.Get(key)
		if err != nil {
			result.CacheErr = err
		}
		if ok {
			result.Object = entry.Object
			result.Cached = true
			span.WithExtra("cache", "hit").End("")
			return result, nil
		}
	}
	obj, err := machine.Emit(ctx, mod)
	if err != nil {
		span.Fail(err)
		return result, fmt.Errorf("%s backend: %w", machine.Name(), err)
	}
	result.Object = obj
	if req.Cache != nil {
		err := req.Cache.Put(key, &objcache.Entry{
			Module:  mod.Name,
			Triple:  desc.Name(),
			Backend: machine.Name(),
			Object:  obj,
		})
		if err != nil && result.CacheErr == nil {
			result.CacheErr = err
		}
	}
	span.WithExtra("bytes", fmt.Sprint(len(obj))).End("")
	return result, nil
}
