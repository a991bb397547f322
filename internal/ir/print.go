package ir

import (
	"fmt"
	"io"
	"strings"
)

// DumpModule writes a human-readable LLVM-flavoured listing of m.
// The output is deterministic for a given module.
func DumpModule(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", m.Name)
	if m.DataLayout != "" {
		fmt.Fprintf(&sb, "target datalayout = %q\n", m.DataLayout)
	}
	if m.Triple != "" {
		fmt.Fprintf(&sb, "target triple = %q\n", m.Triple)
	}
	for _, f := range m.Funcs {
		sb.WriteString("\n")
		writeFunc(&sb, f)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String renders the module listing.
func (m *Module) String() string {
	var sb strings.Builder
	_ = DumpModule(&sb, m)
	return sb.String()
}

func writeFunc(sb *strings.Builder, f *Func) {
	sb.WriteString("define ")
	if f.Linkage == LinkageInternal {
		sb.WriteString("internal ")
	}
	fmt.Fprintf(sb, "void @%s() {\n", f.Name)
	for i, b := range f.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(sb, "%s:\n", b.Name)
		for _, in := range b.Instrs {
			sb.WriteString("  ")
			writeInstr(sb, in)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}\n")
}

func writeInstr(sb *strings.Builder, in *Instr) {
	if in == nil {
		sb.WriteString("<nil>")
		return
	}
	if in.result != nil {
		fmt.Fprintf(sb, "%s = ", in.result.Ref())
	}
	op := func(i int) string {
		if i >= len(in.Operands) {
			return "<missing>"
		}
		return in.Operands[i].Ref()
	}
	switch in.Op {
	case OpAlloca:
		sb.WriteString("alloca float, align 4")
	case OpFAdd, OpFSub, OpFMul, OpFDiv:
		fmt.Fprintf(sb, "%s float %s, %s", in.Op, op(0), op(1))
	case OpStore:
		fmt.Fprintf(sb, "store float %s, ptr %s, align 4", op(0), op(1))
	case OpLoad:
		fmt.Fprintf(sb, "load float, ptr %s, align 4", op(0))
	case OpRet:
		sb.WriteString("ret void")
	default:
		fmt.Fprintf(sb, "<%s>", in.Op)
	}
}
