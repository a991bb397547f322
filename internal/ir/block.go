package ir

import "slices"

// Block is a straight-line instruction sequence ending in one terminator.
type Block struct {
	Name   string
	Instrs []*Instr

	parent *Func
}

// Func returns the owning function.
func (b *Block) Func() *Func { return b.parent }

// Terminator returns the last instruction if it is a terminator.
func (b *Block) Terminator() *Instr {
	if b == nil || len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if last == nil || !last.Op.IsTerminator() {
		return nil
	}
	return last
}

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	return b.Terminator() != nil
}

func (b *Block) append(in *Instr) {
	in.parent = b
	b.Instrs = append(b.Instrs, in)
}

func (b *Block) insert(pos int, in *Instr) {
	in.parent = b
	b.Instrs = slices.Insert(b.Instrs, pos, in)
}

// allocaPrefix is the number of leading allocas.
func (b *Block) allocaPrefix() int {
	n := 0
	for _, in := range b.Instrs {
		if in == nil || in.Op != OpAlloca {
			break
		}
		n++
	}
	return n
}
