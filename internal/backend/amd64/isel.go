package amd64

import (
	"context"
	"fmt"
	"math"

	"fortio.org/safecast"

	"floatc/internal/ir"
	"floatc/internal/trace"
)

// frame assigns every alloca and every float result a 4-byte stack slot
// below rbp, in instruction order.
type frame struct {
	disp map[*ir.Value]int32
	size uint32
}

func layout(f *ir.Func) (*frame, error) {
	fr := &frame{disp: make(map[*ir.Value]int32)}
	var n int
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if in.Result() == nil {
				continue
			}
			n++
			d, err := safecast.Conv[int32](-4 * n)
			if err != nil {
				return nil, fmt.Errorf("@%s: frame too large: %w", f.Name, err)
			}
			fr.disp[in.Result()] = d
		}
	}
	size, err := safecast.Conv[uint32]((4*n + 15) &^ 15)
	if err != nil {
		return nil, fmt.Errorf("@%s: frame too large: %w", f.Name, err)
	}
	fr.size = size
	return fr, nil
}

func (fr *frame) slot(v *ir.Value) (int32, error) {
	d, ok := fr.disp[v]
	if !ok {
		return 0, fmt.Errorf("value %s has no stack slot", v.Ref())
	}
	return d, nil
}

// selectFunc lowers f to machine code. f must be verified.
func selectFunc(ctx context.Context, f *ir.Func) ([]byte, error) {
	fr, err := layout(f)
	if err != nil {
		return nil, err
	}
	tr := trace.FromContext(ctx)
	a := &asm{}
	a.prologue(fr.size)
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start := len(a.buf)
			if err := fr.selectInstr(a, in); err != nil {
				return nil, fmt.Errorf("@%s: %s: %w", f.Name, in, err)
			}
			if tr.Enabled() {
				trace.Point(tr, trace.ScopeInstr, "isel", fmt.Sprintf("%s -> %d bytes", in.Op, len(a.buf)-start), trace.ParentID(ctx))
			}
		}
	}
	return a.buf, nil
}

// operand places v in r.
func (fr *frame) operand(a *asm, r xmm, v *ir.Value) error {
	if c, ok := v.Float(); ok {
		a.movImm(r, math.Float32bits(c))
		return nil
	}
	d, err := fr.slot(v)
	if err != nil {
		return err
	}
	a.loadSlot(r, d)
	return nil
}

func (fr *frame) selectInstr(a *asm, in *ir.Instr) error {
	switch in.Op {
	case ir.OpAlloca:
		// The slot was reserved by layout.
		return nil
	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv:
		if err := fr.operand(a, xmm0, in.Operands[0]); err != nil {
			return err
		}
		if err := fr.operand(a, xmm1, in.Operands[1]); err != nil {
			return err
		}
		a.sse(sseOpcode(in.Op), xmm0, xmm1)
		d, err := fr.slot(in.Result())
		if err != nil {
			return err
		}
		a.storeSlot(d, xmm0)
		return nil
	case ir.OpStore:
		if err := fr.operand(a, xmm0, in.Operands[0]); err != nil {
			return err
		}
		d, err := fr.slot(in.Operands[1])
		if err != nil {
			return err
		}
		a.storeSlot(d, xmm0)
		return nil
	case ir.OpLoad:
		src, err := fr.slot(in.Operands[0])
		if err != nil {
			return err
		}
		dst, err := fr.slot(in.Result())
		if err != nil {
			return err
		}
		a.loadSlot(xmm0, src)
		a.storeSlot(dst, xmm0)
		return nil
	case ir.OpRet:
		a.epilogue()
		return nil
	}
	return fmt.Errorf("unsupported opcode %s", in.Op)
}

func sseOpcode(op ir.Opcode) byte {
	switch op {
	case ir.OpFAdd:
		return opAddss
	case ir.OpFSub:
		return opSubss
	case ir.OpFMul:
		return opMulss
	default:
		return opDivss
	}
}
