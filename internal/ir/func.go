package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Linkage controls whether a function is callable from outside its module.
type Linkage uint8

const (
	// LinkageInternal keeps the symbol local to the object file.
	LinkageInternal Linkage = iota
	// LinkageExternal exports the symbol.
	LinkageExternal
)

func (l Linkage) String() string {
	switch l {
	case LinkageInternal:
		return "internal"
	case LinkageExternal:
		return "external"
	default:
		return "unknown"
	}
}

// ParseLinkage accepts "internal" or "external".
func ParseLinkage(s string) (Linkage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "internal", "":
		return LinkageInternal, nil
	case "external":
		return LinkageExternal, nil
	default:
		return LinkageInternal, fmt.Errorf("invalid linkage %q (expected internal|external)", s)
	}
}

// Func is a parameterless void function. Its first block is the entry block.
type Func struct {
	Name    string
	Linkage Linkage
	Blocks  []*Block

	module *Module
	used   map[string]bool
	suffix map[string]int
}

// Module returns the owning module.
func (f *Func) Module() *Module { return f.module }

// Entry returns the entry block.
func (f *Func) Entry() *Block {
	if f == nil || len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// Terminated reports whether the entry block has its terminator.
func (f *Func) Terminated() bool {
	return f.Entry().Terminated()
}

// NumInstrs counts instructions across all blocks.
func (f *Func) NumInstrs() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Instrs)
	}
	return n
}

func (f *Func) newBlock(name string) *Block {
	b := &Block{Name: f.uniqueName(name), parent: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

func (f *Func) uniqueName(hint string) string {
	if hint == "" {
		hint = "tmp"
	}
	name := hint
	for f.used[name] {
		f.suffix[hint]++
		name = hint + strconv.Itoa(f.suffix[hint])
	}
	f.used[name] = true
	return name
}

func (f *Func) newInstr(op Opcode, typ Type, hint string, operands ...*Value) *Instr {
	in := &Instr{Op: op, Operands: operands}
	if typ != TypeVoid {
		in.result = &Value{
			id:     f.module.nextID(),
			kind:   ValueInstr,
			typ:    typ,
			name:   f.uniqueName(hint),
			instr:  in,
			fn:     f,
			module: f.module,
		}
	}
	return in
}
