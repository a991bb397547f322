package ir

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind distinguishes constants from instruction results.
type ValueKind uint8

const (
	// ValueConst is a materialized constant from the module pool.
	ValueConst ValueKind = iota
	// ValueInstr is the result of an instruction.
	ValueInstr
)

// Value is an immutable typed handle to a constant or an instruction result.
// Values are shared by the instructions that use them and never mutated.
type Value struct {
	id     int
	kind   ValueKind
	typ    Type
	name   string
	konst  float32
	instr  *Instr
	fn     *Func
	module *Module
}

// ID is unique within the owning module.
func (v *Value) ID() int { return v.id }

func (v *Value) Kind() ValueKind { return v.kind }

func (v *Value) Type() Type { return v.typ }

// Name is the local name of an instruction result, empty for constants.
func (v *Value) Name() string { return v.name }

// IsConst reports whether v is a constant.
func (v *Value) IsConst() bool { return v != nil && v.kind == ValueConst }

// Float returns the payload of a constant.
func (v *Value) Float() (float32, bool) {
	if !v.IsConst() {
		return 0, false
	}
	return v.konst, true
}

// Instr returns the producing instruction, nil for constants.
func (v *Value) Instr() *Instr { return v.instr }

// Func returns the function that owns an instruction result, nil for constants.
func (v *Value) Func() *Func { return v.fn }

// Module returns the owning module.
func (v *Value) Module() *Module { return v.module }

// Ref renders the value as an operand.
func (v *Value) Ref() string {
	if v == nil {
		return "<poison>"
	}
	if v.kind == ValueConst {
		return FormatFloat(v.konst)
	}
	return "%" + v.name
}

// FormatFloat renders a float constant the way LLVM does: a short decimal
// when it reads back as exactly the same double, the hex bits of the widened
// double otherwise.
func FormatFloat(f float32) string {
	d := float64(f)
	if !math.IsInf(d, 0) && !math.IsNaN(d) {
		s := strconv.FormatFloat(d, 'e', 6, 64)
		if back, err := strconv.ParseFloat(s, 64); err == nil && back == d {
			return s
		}
	}
	return fmt.Sprintf("0x%016X", math.Float64bits(d))
}
