package ir

import "fmt"

// Builder appends instructions at the end of its current block.
// A Builder is not safe for concurrent use.
type Builder struct {
	fn    *Func
	block *Block
}

// NewBuilder positions a builder at the end of f's entry block.
func NewBuilder(f *Func) *Builder {
	return &Builder{fn: f, block: f.Entry()}
}

// Func returns the function being built.
func (b *Builder) Func() *Func { return b.fn }

// Block returns the current insertion block.
func (b *Builder) Block() *Block { return b.block }

func (b *Builder) checkOpen() error {
	if b.block == nil {
		return fmt.Errorf("builder has no insertion block")
	}
	if b.block.Terminated() {
		return ErrTerminated
	}
	return nil
}

func (b *Builder) checkOperand(v *Value, want Type) error {
	if v == nil {
		return ErrPoisonedOperand
	}
	if v.module != b.fn.module || (v.fn != nil && v.fn != b.fn) {
		return ErrForeignValue
	}
	if v.typ != want {
		return fmt.Errorf("%w: %s is %s, want %s", ErrTypeMismatch, v.Ref(), v.typ, want)
	}
	return nil
}

// Const materializes a constant in the function's module.
func (b *Builder) Const(v float32) *Value {
	return b.fn.module.Const(v)
}

// Binary appends the arithmetic instruction for op and returns its result.
// No instruction is appended on failure.
func (b *Builder) Binary(op BinOp, lhs, rhs *Value) (*Value, error) {
	if lhs == nil || rhs == nil {
		return nil, ErrPoisonedOperand
	}
	opc, err := op.Opcode()
	if err != nil {
		return nil, err
	}
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := b.checkOperand(lhs, TypeFloat); err != nil {
		return nil, err
	}
	if err := b.checkOperand(rhs, TypeFloat); err != nil {
		return nil, err
	}
	in := b.fn.newInstr(opc, TypeFloat, tmpName(opc), lhs, rhs)
	b.block.append(in)
	return in.result, nil
}

// EntryAlloca places a stack slot at the head of the entry block, after any
// slots allocated before it, regardless of the current insertion point.
func (b *Builder) EntryAlloca(name string) (*Value, error) {
	entry := b.fn.Entry()
	if entry == nil {
		return nil, fmt.Errorf("@%s has no entry block", b.fn.Name)
	}
	if entry.Terminated() {
		return nil, ErrTerminated
	}
	in := b.fn.newInstr(OpAlloca, TypePtr, name)
	entry.insert(entry.allocaPrefix(), in)
	return in.result, nil
}

// Store appends a store of v into slot.
func (b *Builder) Store(v, slot *Value) (*Instr, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := b.checkOperand(v, TypeFloat); err != nil {
		return nil, err
	}
	if err := b.checkOperand(slot, TypePtr); err != nil {
		return nil, err
	}
	in := b.fn.newInstr(OpStore, TypeVoid, "", v, slot)
	b.block.append(in)
	return in, nil
}

// Load appends a load from slot.
func (b *Builder) Load(slot *Value, name string) (*Value, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if err := b.checkOperand(slot, TypePtr); err != nil {
		return nil, err
	}
	in := b.fn.newInstr(OpLoad, TypeFloat, name, slot)
	b.block.append(in)
	return in.result, nil
}

// RetVoid terminates the current block.
func (b *Builder) RetVoid() (*Instr, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	in := b.fn.newInstr(OpRet, TypeVoid, "")
	b.block.append(in)
	return in, nil
}
