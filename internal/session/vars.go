package session

import (
	"golang.org/x/text/unicode/norm"

	"floatc/internal/ir"
)

// SymbolTable maps variable names of one function to their stack slots.
// Names are compared in Unicode NFC.
type SymbolTable struct {
	slots map[string]*ir.Value
	order []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{slots: make(map[string]*ir.Value)}
}

func canonical(name string) string {
	return norm.NFC.String(name)
}

// Lookup returns the slot for name.
func (t *SymbolTable) Lookup(name string) (*ir.Value, bool) {
	slot, ok := t.slots[canonical(name)]
	return slot, ok
}

func (t *SymbolTable) bind(name string, slot *ir.Value) {
	key := canonical(name)
	if _, ok := t.slots[key]; !ok {
		t.order = append(t.order, key)
	}
	t.slots[key] = slot
}

// Names returns the variables in order of first assignment.
func (t *SymbolTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *SymbolTable) Len() int { return len(t.order) }
