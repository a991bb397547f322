package ir_test

import (
	"errors"
	"strings"
	"testing"

	"floatc/internal/ir"
)

// buildArith builds 8 + (4 * 2).
func buildArith(t *testing.T) (*ir.Module, *ir.Func) {
	t.Helper()
	m, f, b := newFunc(t)
	mul, err := b.Binary(ir.OpMul, b.Const(4), b.Const(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Binary(ir.OpAdd, b.Const(8), mul); err != nil {
		t.Fatal(err)
	}
	if _, err := b.RetVoid(); err != nil {
		t.Fatal(err)
	}
	return m, f
}

func requireRule(t *testing.T, err error, rule ir.Rule) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s violation, verification passed", rule)
	}
	var ve *ir.VerifyError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *VerifyError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), string(rule)) {
		t.Fatalf("expected %s violation, got: %v", rule, err)
	}
}

func TestVerify_Valid(t *testing.T) {
	m, f := buildArith(t)
	if err := ir.Verify(f); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := ir.VerifyModule(m); err != nil {
		t.Fatalf("VerifyModule: %v", err)
	}
}

func TestVerify_UseBeforeDefinition(t *testing.T) {
	_, f := buildArith(t)
	entry := f.Entry()
	entry.Instrs[0], entry.Instrs[1] = entry.Instrs[1], entry.Instrs[0]
	requireRule(t, ir.Verify(f), ir.RuleDefBeforeUse)
}

func TestVerify_Terminators(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, f, b := newFunc(t)
		if _, err := b.Binary(ir.OpAdd, b.Const(1), b.Const(1)); err != nil {
			t.Fatal(err)
		}
		requireRule(t, ir.Verify(f), ir.RuleTerminator)
	})
	t.Run("empty_block", func(t *testing.T) {
		_, f, _ := newFunc(t)
		requireRule(t, ir.Verify(f), ir.RuleTerminator)
	})
	t.Run("instruction_after_ret", func(t *testing.T) {
		_, f := buildArith(t)
		entry := f.Entry()
		n := len(entry.Instrs)
		entry.Instrs[n-2], entry.Instrs[n-1] = entry.Instrs[n-1], entry.Instrs[n-2]
		requireRule(t, ir.Verify(f), ir.RuleTerminator)
	})
	t.Run("two_rets", func(t *testing.T) {
		_, f := buildArith(t)
		entry := f.Entry()
		ret := entry.Instrs[len(entry.Instrs)-1]
		entry.Instrs = append(entry.Instrs, ret)
		requireRule(t, ir.Verify(f), ir.RuleTerminator)
	})
}

func TestVerify_TypeMismatch(t *testing.T) {
	_, f, b := newFunc(t)
	slot, err := b.EntryAlloca("a")
	if err != nil {
		t.Fatal(err)
	}
	st, err := b.Store(b.Const(1), slot)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.RetVoid(); err != nil {
		t.Fatal(err)
	}
	if err := ir.Verify(f); err != nil {
		t.Fatalf("Verify before mutation: %v", err)
	}
	st.Operands[0], st.Operands[1] = st.Operands[1], st.Operands[0]
	requireRule(t, ir.Verify(f), ir.RuleType)
}

func TestVerify_MissingOperand(t *testing.T) {
	_, f := buildArith(t)
	f.Entry().Instrs[0].Operands[1] = nil
	requireRule(t, ir.Verify(f), ir.RuleStructure)
}
