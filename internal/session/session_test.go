package session_test

import (
	"errors"
	"testing"

	"floatc/internal/diag"
	"floatc/internal/ir"
	"floatc/internal/session"
)

func newSession(t *testing.T) (*session.Session, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(32)
	s := session.New("test", diag.BagReporter{Bag: bag})
	if _, err := s.CreateFunction("main", ir.LinkageInternal); err != nil {
		t.Fatalf("CreateFunction: %v", err)
	}
	return s, bag
}

func opcodes(b *ir.Block) []ir.Opcode {
	out := make([]ir.Opcode, len(b.Instrs))
	for i, in := range b.Instrs {
		out[i] = in.Op
	}
	return out
}

// a = 8 + (4*2); b = a / 4
func TestScenarioVariables(t *testing.T) {
	s, bag := newSession(t)

	mul, err := s.Binary(ir.OpMul, s.Constant(4), s.Constant(2))
	if err != nil {
		t.Fatal(err)
	}
	sum, err := s.Binary(ir.OpAdd, s.Constant(8), mul)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Assign("a", sum); err != nil {
		t.Fatal(err)
	}
	a, err := s.Read("a")
	if err != nil {
		t.Fatalf("Read(a): %v", err)
	}
	quo, err := s.Binary(ir.OpDiv, a, s.Constant(4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Assign("b", quo); err != nil {
		t.Fatal(err)
	}
	if err := s.Terminate(); err != nil {
		t.Fatal(err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}

	entry := s.Func().Entry()
	want := []ir.Opcode{
		ir.OpAlloca, ir.OpAlloca,
		ir.OpFMul, ir.OpFAdd, ir.OpStore,
		ir.OpLoad, ir.OpFDiv, ir.OpStore,
		ir.OpRet,
	}
	got := opcodes(entry)
	if len(got) != len(want) {
		t.Fatalf("opcodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("opcodes = %v, want %v", got, want)
		}
	}
	if entry.Instrs[0].Result().Name() != "a" || entry.Instrs[1].Result().Name() != "b" {
		t.Errorf("slots out of order: %s, %s", entry.Instrs[0].Result().Name(), entry.Instrs[1].Result().Name())
	}
	div := entry.Instrs[6]
	if div.Operands[0] != a {
		t.Errorf("dividend = %s, want loaded a", div.Operands[0].Ref())
	}
	if names := s.Symbols().Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}

	if err := ir.Verify(s.Func()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	fr, err := ir.Eval(s.Func())
	if err != nil {
		t.Fatal(err)
	}
	slotB, _ := s.Symbols().Lookup("b")
	if got, _ := fr.Slot(slotB); got != 4 {
		t.Errorf("b = %v, want 4", got)
	}
}

func TestAssign_ReusesSlot(t *testing.T) {
	s, _ := newSession(t)
	for i := range 3 {
		if _, err := s.Assign("x", s.Constant(float32(i))); err != nil {
			t.Fatal(err)
		}
	}
	if s.Symbols().Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Symbols().Len())
	}
	allocas := 0
	for _, in := range s.Func().Entry().Instrs {
		if in.Op == ir.OpAlloca {
			allocas++
		}
	}
	if allocas != 1 {
		t.Errorf("allocas = %d, want 1", allocas)
	}
	if s.Func().Entry().Instrs[0].Op != ir.OpAlloca {
		t.Error("slot is not the first instruction of the entry block")
	}
}

func TestAssign_NormalizesNames(t *testing.T) {
	s, _ := newSession(t)
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if _, err := s.Assign(composed, s.Constant(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read(decomposed); err != nil {
		t.Fatalf("Read decomposed spelling: %v", err)
	}
	if s.Symbols().Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Symbols().Len())
	}
}

func TestAssign_Poisoned(t *testing.T) {
	s, bag := newSession(t)
	if _, err := s.Assign("x", nil); !errors.Is(err, ir.ErrPoisonedOperand) {
		t.Fatalf("err = %v, want ErrPoisonedOperand", err)
	}
	if n := s.Func().NumInstrs(); n != 0 {
		t.Errorf("emitted %d instructions", n)
	}
	if bag.Len() != 0 {
		t.Errorf("poisoned operand produced diagnostics: %v", bag.Items())
	}
	if _, err := s.Assign("", s.Constant(1)); !errors.Is(err, session.ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
}

func TestRead_Unknown(t *testing.T) {
	s, bag := newSession(t)
	v, err := s.Read("ghost")
	var unk *session.UnknownVariableError
	if !errors.As(err, &unk) || unk.Name != "ghost" {
		t.Fatalf("err = %v, want UnknownVariableError", err)
	}
	if v != nil {
		t.Error("expected nil value")
	}
	if n := s.Func().NumInstrs(); n != 0 {
		t.Errorf("emitted %d instructions", n)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.IRUnknownVariable || items[0].Where.Func != "main" {
		t.Errorf("diagnostics = %v", items)
	}
	if !session.IsLocal(err) {
		t.Error("unknown variable should be local")
	}
}

func TestBinary_InvalidOperator(t *testing.T) {
	s, bag := newSession(t)
	s.At(3)
	_, err := s.Binary(ir.BinOp('%'), s.Constant(1), s.Constant(2))
	var opErr *ir.OperatorError
	if !errors.As(err, &opErr) || opErr.Op != '%' {
		t.Fatalf("err = %v, want OperatorError('%%')", err)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.IRInvalidOperator || items[0].Where.Stmt != 3 {
		t.Errorf("diagnostics = %v", items)
	}
	// The poisoned result flows on without a second report.
	if _, err := s.Binary(ir.OpAdd, nil, s.Constant(1)); !errors.Is(err, ir.ErrPoisonedOperand) {
		t.Errorf("err = %v", err)
	}
	if bag.Len() != 1 {
		t.Errorf("poisoned operand reported again")
	}
}

func TestTerminate(t *testing.T) {
	s, _ := newSession(t)
	if err := s.Terminate(); err != nil {
		t.Fatal(err)
	}
	if err := s.Terminate(); !errors.Is(err, ir.ErrTerminated) {
		t.Errorf("second Terminate = %v", err)
	}
	if _, err := s.Assign("x", s.Constant(1)); !errors.Is(err, ir.ErrTerminated) {
		t.Errorf("Assign after Terminate = %v", err)
	}
	if s.Symbols().Len() != 0 {
		t.Error("slot allocated after Terminate")
	}
	mod, err := s.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if !mod.Sealed() {
		t.Error("module not sealed")
	}
	if _, err := s.CreateFunction("late", ir.LinkageInternal); !errors.Is(err, ir.ErrSealed) {
		t.Errorf("CreateFunction after Finalize = %v", err)
	}
}

func TestFinalize_Unterminated(t *testing.T) {
	s, _ := newSession(t)
	if _, err := s.Finalize(); err == nil {
		t.Fatal("expected error for unterminated function")
	}
}

func TestMultipleFunctions_OwnTables(t *testing.T) {
	s, _ := newSession(t)
	if _, err := s.Assign("x", s.Constant(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Terminate(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateFunction("helper", ir.LinkageExternal); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read("x"); err == nil {
		t.Error("variable leaked across functions")
	}
	if _, err := s.CreateFunction("main", ir.LinkageInternal); err == nil {
		t.Error("duplicate function accepted")
	}
}

func TestNoFunction(t *testing.T) {
	s := session.New("empty", nil)
	if _, err := s.Read("x"); !errors.Is(err, session.ErrNoFunction) {
		t.Errorf("Read = %v", err)
	}
	if err := s.Terminate(); !errors.Is(err, session.ErrNoFunction) {
		t.Errorf("Terminate = %v", err)
	}
}

func TestBinary_InvalidOperatorWithPoisonedOperand(t *testing.T) {
	s, bag := newSession(t)
	_, err := s.Binary(ir.BinOp('^'), nil, s.Constant(1))
	var opErr *ir.OperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("err = %v, want OperatorError", err)
	}
	if bag.Len() != 1 {
		t.Errorf("diagnostics = %v", bag.Items())
	}
}
