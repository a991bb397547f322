package ir

import "fmt"

// Frame holds the results of evaluating a function.
type Frame struct {
	values map[*Value]float32
	slots  map[*Value]float32
}

// Value returns the computed result of v, or its payload when v is a constant.
func (fr *Frame) Value(v *Value) (float32, bool) {
	if c, ok := v.Float(); ok {
		return c, true
	}
	x, ok := fr.values[v]
	return x, ok
}

// Slot returns the last value stored into slot.
func (fr *Frame) Slot(slot *Value) (float32, bool) {
	x, ok := fr.slots[slot]
	return x, ok
}

// Eval executes f instruction by instruction with binary32 arithmetic.
// f should be verified first.
func Eval(f *Func) (*Frame, error) {
	fr := &Frame{
		values: make(map[*Value]float32),
		slots:  make(map[*Value]float32),
	}
	entry := f.Entry()
	if entry == nil {
		return nil, fmt.Errorf("@%s has no entry block", f.Name)
	}
	for i, in := range entry.Instrs {
		if err := fr.step(in); err != nil {
			return nil, fmt.Errorf("@%s %s#%d: %w", f.Name, entry.Name, i, err)
		}
		if in.Op.IsTerminator() {
			return fr, nil
		}
	}
	return nil, fmt.Errorf("@%s: fell off the end of %s", f.Name, entry.Name)
}

func (fr *Frame) operand(v *Value) (float32, error) {
	x, ok := fr.Value(v)
	if !ok {
		return 0, fmt.Errorf("%s has no value", v.Ref())
	}
	return x, nil
}

func (fr *Frame) step(in *Instr) error {
	switch in.Op {
	case OpAlloca, OpRet:
		return nil
	case OpFAdd, OpFSub, OpFMul, OpFDiv:
		a, err := fr.operand(in.Operands[0])
		if err != nil {
			return err
		}
		b, err := fr.operand(in.Operands[1])
		if err != nil {
			return err
		}
		fr.values[in.result] = arith(in.Op, a, b)
		return nil
	case OpStore:
		x, err := fr.operand(in.Operands[0])
		if err != nil {
			return err
		}
		fr.slots[in.Operands[1]] = x
		return nil
	case OpLoad:
		x, ok := fr.slots[in.Operands[0]]
		if !ok {
			return fmt.Errorf("load from uninitialised slot %s", in.Operands[0].Ref())
		}
		fr.values[in.result] = x
		return nil
	default:
		return fmt.Errorf("cannot evaluate %s", in.Op)
	}
}

// arith rounds every result to binary32 explicitly.
func arith(op Opcode, a, b float32) float32 {
	switch op {
	case OpFAdd:
		return float32(a + b)
	case OpFSub:
		return float32(a - b)
	case OpFMul:
		return float32(a * b)
	default:
		return float32(a / b)
	}
}
