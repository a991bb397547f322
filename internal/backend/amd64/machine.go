// Package amd64 lowers verified IR for x86-64 ELF targets in process.
//
// Every value lives in a 4-byte stack slot below rbp. Arithmetic goes through
// xmm0 and xmm1 with scalar SSE instructions and constants are materialized as
// 32-bit immediates, so the object needs no relocations.
package amd64

import (
	"context"
	"errors"
	"fmt"

	"floatc/internal/ir"
	"floatc/internal/target"
	"floatc/internal/trace"
)

// ErrUnsupported is returned by New for targets this backend cannot encode.
var ErrUnsupported = errors.New("native backend supports x86_64 ELF targets only")

// Supports reports whether desc can be lowered natively.
func Supports(desc *target.Descriptor) bool {
	return desc != nil && desc.Triple.Arch == "x86_64" && desc.Format == target.FormatELF
}

type Machine struct {
	desc *target.Descriptor
}

func New(desc *target.Descriptor) (*Machine, error) {
	if !Supports(desc) {
		name := "<nil>"
		if desc != nil {
			name = desc.Name()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	return &Machine{desc: desc}, nil
}

func (m *Machine) Name() string { return "native" }

func (m *Machine) Target() *target.Descriptor { return m.desc }

// Emit produces an ELF64 relocatable object with one STT_FUNC symbol per
// function. Internal linkage maps to STB_LOCAL, external to STB_GLOBAL.
func (m *Machine) Emit(ctx context.Context, mod *ir.Module) ([]byte, error) {
	if mod == nil {
		return nil, fmt.Errorf("nil module")
	}
	var (
		text    []byte
		locals  []symbol
		globals []symbol
	)
	for _, f := range mod.Funcs {
		span := trace.Begin(trace.FromContext(ctx), trace.ScopeFunction, "isel:"+f.Name, trace.ParentID(ctx))
		code, err := selectFunc(trace.WithSpan(ctx, span), f)
		if err != nil {
			span.Fail(err)
			return nil, err
		}
		span.WithExtra("bytes", fmt.Sprint(len(code))).End("")

		text = padTo(text, textAlign)
		sym := symbol{name: f.Name, offset: len(text), size: len(code), global: f.Linkage == ir.LinkageExternal}
		text = append(text, code...)
		if sym.global {
			globals = append(globals, sym)
		} else {
			locals = append(locals, sym)
		}
	}
	return writeELF(mod.Name, text, append(locals, globals...))
}
