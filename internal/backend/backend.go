// Package backend selects the code generator for a resolved target.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"floatc/internal/backend/amd64"
	"floatc/internal/backend/llvm"
	"floatc/internal/ir"
	"floatc/internal/target"
)

// Kind selects a backend family.
type Kind uint8

const (
	KindAuto Kind = iota
	KindNative
	KindLLVM
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindNative:
		return "native"
	case KindLLVM:
		return "llvm"
	}
	return "unknown"
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "native":
		return KindNative, nil
	case "llvm":
		return KindLLVM, nil
	}
	return KindAuto, fmt.Errorf("unknown backend %q (expected: auto|native|llvm)", s)
}

// Machine turns a module into object file bytes for one target.
type Machine interface {
	Name() string
	Target() *target.Descriptor
	Emit(ctx context.Context, mod *ir.Module) ([]byte, error)
}

// TextEmitter is implemented by machines that can print their LLVM assembly.
type TextEmitter interface {
	EmitText(mod *ir.Module) (string, error)
}

// ErrUnsupportedTarget means no available backend can produce objects for
// the target.
var ErrUnsupportedTarget = errors.New("target not supported by backend")

// Options tune Resolve.
type Options struct {
	// Commands receives external tool invocations of the llvm backend.
	Commands io.Writer
}

// Resolve picks the machine for desc. Auto prefers the native backend and
// falls back to LLVM when the target is not x86_64 ELF.
func Resolve(desc *target.Descriptor, kind Kind, opts Options) (Machine, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: no target", ErrUnsupportedTarget)
	}
	switch kind {
	case KindNative:
		m, err := amd64.New(desc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedTarget, err)
		}
		return m, nil
	case KindLLVM:
		return resolveLLVM(desc, opts)
	case KindAuto:
		if amd64.Supports(desc) {
			return amd64.New(desc)
		}
		return resolveLLVM(desc, opts)
	}
	return nil, fmt.Errorf("unknown backend kind %d", kind)
}

func resolveLLVM(desc *target.Descriptor, opts Options) (Machine, error) {
	tc, err := llvm.FindToolchain()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedTarget, desc.Name(), err)
	}
	tc.Commands = opts.Commands
	return llvm.New(desc, tc), nil
}

// LLVMText renders mod as LLVM assembly without invoking external tools.
func LLVMText(mod *ir.Module) (string, error) {
	out, err := llvm.Translate(mod)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
