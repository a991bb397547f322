package llvm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"floatc/internal/ir"
	"floatc/internal/target"
	"floatc/internal/trace"
)

// Machine lowers modules through the LLVM toolchain.
type Machine struct {
	desc *target.Descriptor
	tc   Toolchain
}

func New(desc *target.Descriptor, tc Toolchain) *Machine {
	return &Machine{desc: desc, tc: tc}
}

func (m *Machine) Name() string { return "llvm" }

func (m *Machine) Target() *target.Descriptor { return m.desc }

// EmitText returns the LLVM assembly for mod.
func (m *Machine) EmitText(mod *ir.Module) (string, error) {
	out, err := Translate(mod)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Emit compiles mod in a scratch directory and returns the object bytes.
func (m *Machine) Emit(ctx context.Context, mod *ir.Module) ([]byte, error) {
	text, err := m.EmitText(mod)
	if err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp("", "floatc-llvm-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	llPath := filepath.Join(tmpDir, "out.ll")
	objPath := filepath.Join(tmpDir, "out.o")
	if err := os.WriteFile(llPath, []byte(text), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write LLVM IR: %w", err)
	}

	triple := ""
	if m.desc != nil {
		triple = m.desc.Name()
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFunction, "llvm:compile", trace.ParentID(ctx))
	if err := m.tc.Compile(ctx, triple, llPath, objPath); err != nil {
		span.Fail(err)
		return nil, err
	}
	span.End(triple)

	obj, err := os.ReadFile(objPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return obj, nil
}
