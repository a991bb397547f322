package ir

import "strings"

// Instr is one element of a block's instruction stream.
type Instr struct {
	Op       Opcode
	Operands []*Value

	result *Value
	parent *Block
}

// Result returns the produced value, nil for store and ret.
func (in *Instr) Result() *Value { return in.result }

// Block returns the block holding the instruction.
func (in *Instr) Block() *Block { return in.parent }

func (in *Instr) String() string {
	var sb strings.Builder
	writeInstr(&sb, in)
	return sb.String()
}
