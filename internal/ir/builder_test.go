package ir_test

import (
	"errors"
	"math"
	"testing"

	"floatc/internal/ir"
)

func newFunc(t *testing.T) (*ir.Module, *ir.Func, *ir.Builder) {
	t.Helper()
	m := ir.NewModule("test")
	f, err := m.NewFunc("main", ir.LinkageInternal)
	if err != nil {
		t.Fatalf("NewFunc: %v", err)
	}
	return m, f, ir.NewBuilder(f)
}

func ieee(op ir.BinOp, a, b float32) float32 {
	switch op {
	case ir.OpAdd:
		return float32(a + b)
	case ir.OpSub:
		return float32(a - b)
	case ir.OpMul:
		return float32(a * b)
	default:
		return float32(a / b)
	}
}

func TestBinary_MatchesIEEE(t *testing.T) {
	pairs := [][2]float32{
		{8, 2},
		{4, 2},
		{1.5, -0.25},
		{0.1, 0.2},
		{3.4e38, 10},
		{1e-30, 3},
		{-7, 0.5},
	}
	for _, op := range ir.BinOps() {
		for _, p := range pairs {
			_, f, b := newFunc(t)
			v, err := b.Binary(op, b.Const(p[0]), b.Const(p[1]))
			if err != nil {
				t.Fatalf("%v %s %v: %v", p[0], op, p[1], err)
			}
			if _, err := b.RetVoid(); err != nil {
				t.Fatalf("RetVoid: %v", err)
			}
			if err := ir.Verify(f); err != nil {
				t.Fatalf("Verify: %v", err)
			}
			fr, err := ir.Eval(f)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			got, ok := fr.Value(v)
			if !ok {
				t.Fatalf("no value for %s", v.Ref())
			}
			want := ieee(op, p[0], p[1])
			if math.Float32bits(got) != math.Float32bits(want) {
				t.Errorf("%v %s %v = %v, want %v", p[0], op, p[1], got, want)
			}
		}
	}
}

func TestBinary_UnsupportedOperator(t *testing.T) {
	for _, op := range []ir.BinOp{'%', '^', '<', 0} {
		_, f, b := newFunc(t)
		v, err := b.Binary(op, b.Const(1), b.Const(2))
		if v != nil {
			t.Errorf("op %q: expected no value", rune(op))
		}
		var opErr *ir.OperatorError
		if !errors.As(err, &opErr) {
			t.Fatalf("op %q: expected OperatorError, got %v", rune(op), err)
		}
		if opErr.Op != op {
			t.Errorf("OperatorError.Op = %q, want %q", rune(opErr.Op), rune(op))
		}
		if n := f.NumInstrs(); n != 0 {
			t.Errorf("op %q: %d instruction(s) appended", rune(op), n)
		}
	}
}

func TestBinary_PoisonedOperand(t *testing.T) {
	_, f, b := newFunc(t)
	if _, err := b.Binary(ir.OpAdd, nil, b.Const(1)); !errors.Is(err, ir.ErrPoisonedOperand) {
		t.Errorf("nil lhs: got %v", err)
	}
	if _, err := b.Binary(ir.OpMul, b.Const(1), nil); !errors.Is(err, ir.ErrPoisonedOperand) {
		t.Errorf("nil rhs: got %v", err)
	}
	if _, err := b.Binary('%', nil, nil); !errors.Is(err, ir.ErrPoisonedOperand) {
		t.Errorf("nil operands with bad op: got %v", err)
	}
	if n := f.NumInstrs(); n != 0 {
		t.Errorf("%d instruction(s) appended", n)
	}
}

func TestBuilder_RejectsAfterTerminator(t *testing.T) {
	_, f, b := newFunc(t)
	if _, err := b.RetVoid(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Binary(ir.OpAdd, b.Const(1), b.Const(2)); !errors.Is(err, ir.ErrTerminated) {
		t.Errorf("Binary after ret: got %v", err)
	}
	if _, err := b.EntryAlloca("x"); !errors.Is(err, ir.ErrTerminated) {
		t.Errorf("EntryAlloca after ret: got %v", err)
	}
	if _, err := b.RetVoid(); !errors.Is(err, ir.ErrTerminated) {
		t.Errorf("second RetVoid: got %v", err)
	}
	if n := f.NumInstrs(); n != 1 {
		t.Errorf("NumInstrs = %d, want 1", n)
	}
}

func TestBuilder_ForeignValue(t *testing.T) {
	m, _, b := newFunc(t)
	other, err := m.NewFunc("other", ir.LinkageInternal)
	if err != nil {
		t.Fatal(err)
	}
	ob := ir.NewBuilder(other)
	v, err := ob.Binary(ir.OpAdd, ob.Const(1), ob.Const(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Binary(ir.OpAdd, v, b.Const(1)); !errors.Is(err, ir.ErrForeignValue) {
		t.Errorf("got %v, want ErrForeignValue", err)
	}

	foreign := ir.NewModule("elsewhere").Const(3)
	if _, err := b.Binary(ir.OpAdd, foreign, b.Const(1)); !errors.Is(err, ir.ErrForeignValue) {
		t.Errorf("constant from another module: got %v", err)
	}
}

func TestBuilder_EntryAllocaKeepsProgramOrder(t *testing.T) {
	_, f, b := newFunc(t)
	sum, err := b.Binary(ir.OpAdd, b.Const(1), b.Const(2))
	if err != nil {
		t.Fatal(err)
	}
	a, err := b.EntryAlloca("a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Store(sum, a); err != nil {
		t.Fatal(err)
	}
	c, err := b.EntryAlloca("c")
	if err != nil {
		t.Fatal(err)
	}
	entry := f.Entry()
	if entry.Instrs[0].Result() != a || entry.Instrs[1].Result() != c {
		t.Fatalf("allocas not at entry head in order: %v, %v", entry.Instrs[0], entry.Instrs[1])
	}
	if entry.Instrs[2].Op != ir.OpFAdd {
		t.Errorf("instr 2 = %s, want fadd", entry.Instrs[2].Op)
	}
}

func TestBuilder_UniqueNames(t *testing.T) {
	_, _, b := newFunc(t)
	x, _ := b.Binary(ir.OpAdd, b.Const(1), b.Const(2))
	y, _ := b.Binary(ir.OpAdd, x, b.Const(2))
	z, _ := b.Binary(ir.OpDiv, y, b.Const(2))
	if x.Name() != "addtmp" || y.Name() != "addtmp1" || z.Name() != "divtmp" {
		t.Errorf("names = %q %q %q", x.Name(), y.Name(), z.Name())
	}
}

func TestBuilder_StoreTypeMismatch(t *testing.T) {
	_, f, b := newFunc(t)
	slot, err := b.EntryAlloca("a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Store(slot, slot); !errors.Is(err, ir.ErrTypeMismatch) {
		t.Errorf("store ptr into slot: got %v", err)
	}
	if _, err := b.Load(b.Const(1), "x"); !errors.Is(err, ir.ErrTypeMismatch) {
		t.Errorf("load from float: got %v", err)
	}
	if n := f.NumInstrs(); n != 1 {
		t.Errorf("NumInstrs = %d, want 1", n)
	}
}

func TestParseBinOp(t *testing.T) {
	for _, s := range []string{"+", "-", "*", "/"} {
		op, err := ir.ParseBinOp(s)
		if err != nil || op.String() != s {
			t.Errorf("ParseBinOp(%q) = %v, %v", s, op, err)
		}
	}
	for _, s := range []string{"", "%", "**"} {
		if _, err := ir.ParseBinOp(s); err == nil {
			t.Errorf("ParseBinOp(%q): expected error", s)
		}
	}
}
