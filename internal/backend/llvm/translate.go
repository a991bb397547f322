// Package llvm lowers IR through LLVM: the module is rebuilt with
// github.com/llir/llvm and the resulting textual IR is compiled to an object
// file by clang, or by llc when clang is unavailable.
package llvm

import (
	"fmt"

	lir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"floatc/internal/ir"
)

const floatAlign = lir.Align(4)

// Translate rebuilds m as an llir module carrying the same triple and data
// layout. m should be verified.
func Translate(m *ir.Module) (*lir.Module, error) {
	if m == nil {
		return nil, fmt.Errorf("nil module")
	}
	out := lir.NewModule()
	out.SourceFilename = m.Name
	out.TargetTriple = m.Triple
	out.DataLayout = m.DataLayout
	for _, f := range m.Funcs {
		if err := translateFunc(out, f); err != nil {
			return nil, fmt.Errorf("@%s: %w", f.Name, err)
		}
	}
	return out, nil
}

func translateFunc(out *lir.Module, f *ir.Func) error {
	lf := out.NewFunc(f.Name, types.Void)
	if f.Linkage == ir.LinkageInternal {
		lf.Linkage = enum.LinkageInternal
	}
	vals := make(map[*ir.Value]value.Value)
	operand := func(v *ir.Value) (value.Value, error) {
		if c, ok := v.Float(); ok {
			return constant.NewFloat(types.Float, float64(c)), nil
		}
		lv, ok := vals[v]
		if !ok {
			return nil, fmt.Errorf("%s used before definition", v.Ref())
		}
		return lv, nil
	}
	for _, b := range f.Blocks {
		lb := lf.NewBlock(b.Name)
		for _, in := range b.Instrs {
			ops := make([]value.Value, len(in.Operands))
			for i, op := range in.Operands {
				lv, err := operand(op)
				if err != nil {
					return err
				}
				ops[i] = lv
			}
			res, err := translateInstr(lb, in, ops)
			if err != nil {
				return err
			}
			if res != nil {
				vals[in.Result()] = res
			}
		}
	}
	return nil
}

func translateInstr(lb *lir.Block, in *ir.Instr, ops []value.Value) (value.Value, error) {
	var res value.Named
	switch in.Op {
	case ir.OpAlloca:
		a := lb.NewAlloca(types.Float)
		a.Align = floatAlign
		res = a
	case ir.OpStore:
		s := lb.NewStore(ops[0], ops[1])
		s.Align = floatAlign
		return nil, nil
	case ir.OpLoad:
		l := lb.NewLoad(types.Float, ops[0])
		l.Align = floatAlign
		res = l
	case ir.OpFAdd:
		res = lb.NewFAdd(ops[0], ops[1])
	case ir.OpFSub:
		res = lb.NewFSub(ops[0], ops[1])
	case ir.OpFMul:
		res = lb.NewFMul(ops[0], ops[1])
	case ir.OpFDiv:
		res = lb.NewFDiv(ops[0], ops[1])
	case ir.OpRet:
		lb.NewRet(nil)
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported opcode %s", in.Op)
	}
	res.SetName(in.Result().Name())
	return res, nil
}
