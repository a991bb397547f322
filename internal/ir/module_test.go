package ir_test

import (
	"errors"
	"testing"

	"floatc/internal/ir"
)

func TestModule_Finalize(t *testing.T) {
	m, f, b := newFunc(t)
	if err := m.Finalize(); err == nil {
		t.Fatal("Finalize accepted an unterminated function")
	}
	if _, err := b.RetVoid(); err != nil {
		t.Fatal(err)
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !m.Sealed() || !f.Terminated() {
		t.Fatal("module not sealed after Finalize")
	}
	if _, err := m.NewFunc("late", ir.LinkageExternal); !errors.Is(err, ir.ErrSealed) {
		t.Errorf("NewFunc on sealed module: got %v", err)
	}
}

func TestModule_DuplicateFunc(t *testing.T) {
	m, _, _ := newFunc(t)
	if _, err := m.NewFunc("main", ir.LinkageExternal); err == nil {
		t.Fatal("duplicate function accepted")
	}
}

func TestModule_ConstIsFresh(t *testing.T) {
	m := ir.NewModule("c")
	a, b := m.Const(1), m.Const(1)
	if a == b || a.ID() == b.ID() {
		t.Fatal("Const returned a shared value")
	}
	if len(m.Consts()) != 2 {
		t.Fatalf("pool size = %d, want 2", len(m.Consts()))
	}
}

func TestParseLinkage(t *testing.T) {
	if l, err := ir.ParseLinkage("external"); err != nil || l != ir.LinkageExternal {
		t.Errorf("external: %v %v", l, err)
	}
	if l, err := ir.ParseLinkage(""); err != nil || l != ir.LinkageInternal {
		t.Errorf("empty: %v %v", l, err)
	}
	if _, err := ir.ParseLinkage("weak"); err == nil {
		t.Error("weak accepted")
	}
}
