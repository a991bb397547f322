package ir

// Opcode enumerates IR instructions.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpAlloca
	OpStore
	OpLoad
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpRet
)

func (o Opcode) String() string {
	switch o {
	case OpAlloca:
		return "alloca"
	case OpStore:
		return "store"
	case OpLoad:
		return "load"
	case OpFAdd:
		return "fadd"
	case OpFSub:
		return "fsub"
	case OpFMul:
		return "fmul"
	case OpFDiv:
		return "fdiv"
	case OpRet:
		return "ret"
	default:
		return "invalid"
	}
}

// IsTerminator reports whether o ends a basic block.
func (o Opcode) IsTerminator() bool { return o == OpRet }

// IsBinary reports whether o is one of the float arithmetic opcodes.
func (o Opcode) IsBinary() bool {
	switch o {
	case OpFAdd, OpFSub, OpFMul, OpFDiv:
		return true
	}
	return false
}

// BinOp is the closed set of source-level arithmetic operators.
type BinOp byte

const (
	OpAdd BinOp = '+'
	OpSub BinOp = '-'
	OpMul BinOp = '*'
	OpDiv BinOp = '/'
)

// BinOps lists the supported operators.
func BinOps() []BinOp { return []BinOp{OpAdd, OpSub, OpMul, OpDiv} }

func (op BinOp) String() string { return string(rune(op)) }

// Opcode maps op to its instruction. Anything outside the supported set is an
// *OperatorError.
func (op BinOp) Opcode() (Opcode, error) {
	switch op {
	case OpAdd:
		return OpFAdd, nil
	case OpSub:
		return OpFSub, nil
	case OpMul:
		return OpFMul, nil
	case OpDiv:
		return OpFDiv, nil
	default:
		return OpInvalid, &OperatorError{Op: op}
	}
}

// ParseBinOp converts a one-character operator string.
func ParseBinOp(s string) (BinOp, error) {
	if len(s) != 1 {
		var op BinOp
		if len(s) > 0 {
			op = BinOp(s[0])
		}
		return op, &OperatorError{Op: op}
	}
	op := BinOp(s[0])
	if _, err := op.Opcode(); err != nil {
		return op, err
	}
	return op, nil
}

func tmpName(o Opcode) string {
	switch o {
	case OpFAdd:
		return "addtmp"
	case OpFSub:
		return "subtmp"
	case OpFMul:
		return "multmp"
	case OpFDiv:
		return "divtmp"
	default:
		return "tmp"
	}
}
