package ir

import (
	"errors"
	"fmt"
)

// Rule names the well-formedness rule a VerifyError violates.
type Rule string

const (
	RuleStructure    Rule = "structure"
	RuleDefBeforeUse Rule = "def-before-use"
	RuleTerminator   Rule = "terminator"
	RuleType         Rule = "type"
)

// VerifyError describes one violation. Index is -1 for block-level problems.
type VerifyError struct {
	Func  string
	Block string
	Index int
	Rule  Rule
	Msg   string
}

func (e *VerifyError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("@%s %s#%d: %s: %s", e.Func, e.Block, e.Index, e.Rule, e.Msg)
	}
	if e.Block != "" {
		return fmt.Sprintf("@%s %s: %s: %s", e.Func, e.Block, e.Rule, e.Msg)
	}
	return fmt.Sprintf("@%s: %s: %s", e.Func, e.Rule, e.Msg)
}

// VerifyModule verifies every function of m.
func VerifyModule(m *Module) error {
	if m == nil {
		return fmt.Errorf("nil module")
	}
	var errs []error
	for _, f := range m.Funcs {
		if err := Verify(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Verify checks that every operand is defined before use, that each block ends
// in exactly one terminator, and that operand and result types match.
func Verify(f *Func) error {
	if f == nil {
		return fmt.Errorf("nil function")
	}
	v := verifier{f: f, defined: make(map[*Value]bool)}
	if len(f.Blocks) == 0 {
		v.fail(nil, -1, RuleStructure, "function has no blocks")
	}
	for bi, b := range f.Blocks {
		v.block(bi, b)
	}
	return errors.Join(v.errs...)
}

type verifier struct {
	f       *Func
	defined map[*Value]bool
	errs    []error
}

func (v *verifier) fail(b *Block, idx int, rule Rule, format string, args ...any) {
	name := ""
	if b != nil {
		name = b.Name
	}
	v.errs = append(v.errs, &VerifyError{
		Func:  v.f.Name,
		Block: name,
		Index: idx,
		Rule:  rule,
		Msg:   fmt.Sprintf(format, args...),
	})
}

func (v *verifier) block(bi int, b *Block) {
	if b == nil {
		v.fail(nil, -1, RuleStructure, "nil block at position %d", bi)
		return
	}
	if b.parent != v.f {
		v.fail(b, -1, RuleStructure, "block is not owned by the function")
	}
	if len(b.Instrs) == 0 {
		v.fail(b, -1, RuleTerminator, "empty block has no terminator")
		return
	}
	last := len(b.Instrs) - 1
	for i, in := range b.Instrs {
		if in == nil {
			v.fail(b, i, RuleStructure, "nil instruction")
			continue
		}
		if in.parent != b {
			v.fail(b, i, RuleStructure, "%s is linked to another block", in.Op)
		}
		if in.Op.IsTerminator() && i != last {
			v.fail(b, i, RuleTerminator, "%s is followed by %d instruction(s)", in.Op, last-i)
		}
		if i == last && !in.Op.IsTerminator() {
			v.fail(b, i, RuleTerminator, "block ends in %s instead of a terminator", in.Op)
		}
		if in.Op == OpAlloca && bi != 0 {
			v.fail(b, i, RuleStructure, "alloca outside the entry block")
		}
		for oi, op := range in.Operands {
			v.operand(b, i, in, oi, op)
		}
		v.types(b, i, in)
		if in.result != nil {
			v.defined[in.result] = true
		}
	}
}

func (v *verifier) operand(b *Block, i int, in *Instr, oi int, op *Value) {
	switch {
	case op == nil:
		v.fail(b, i, RuleStructure, "%s operand %d is missing", in.Op, oi)
	case op.module != v.f.module:
		v.fail(b, i, RuleStructure, "%s operand %d belongs to another module", in.Op, oi)
	case op.kind == ValueConst:
	case op.fn != v.f:
		v.fail(b, i, RuleStructure, "%s operand %s belongs to another function", in.Op, op.Ref())
	case !v.defined[op]:
		v.fail(b, i, RuleDefBeforeUse, "%s uses %s before its definition", in.Op, op.Ref())
	}
}

func (v *verifier) types(b *Block, i int, in *Instr) {
	want := func(n int, operands ...Type) {
		if len(in.Operands) != n {
			v.fail(b, i, RuleStructure, "%s takes %d operand(s), has %d", in.Op, n, len(in.Operands))
			return
		}
		for oi, t := range operands {
			if op := in.Operands[oi]; op != nil && op.typ != t {
				v.fail(b, i, RuleType, "%s operand %d is %s, want %s", in.Op, oi, op.typ, t)
			}
		}
	}
	result := func(t Type) {
		got := TypeVoid
		if in.result != nil {
			got = in.result.typ
		}
		if got != t {
			v.fail(b, i, RuleType, "%s produces %s, want %s", in.Op, got, t)
		}
	}
	switch in.Op {
	case OpFAdd, OpFSub, OpFMul, OpFDiv:
		want(2, TypeFloat, TypeFloat)
		result(TypeFloat)
	case OpAlloca:
		want(0)
		result(TypePtr)
	case OpStore:
		want(2, TypeFloat, TypePtr)
		result(TypeVoid)
	case OpLoad:
		want(1, TypePtr)
		result(TypeFloat)
	case OpRet:
		want(0)
		result(TypeVoid)
	default:
		v.fail(b, i, RuleStructure, "unknown opcode %d", in.Op)
	}
}
