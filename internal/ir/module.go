package ir

import (
	"errors"
	"fmt"
)

// Module owns the functions of a compilation unit and its constant pool.
// Triple and DataLayout stay empty until lowering attaches a target.
type Module struct {
	Name       string
	Triple     string
	DataLayout string
	Funcs      []*Func

	consts []*Value
	ids    int
	sealed bool
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

func (m *Module) nextID() int {
	m.ids++
	return m.ids
}

// Const materializes a fresh constant in the module pool.
func (m *Module) Const(v float32) *Value {
	c := &Value{
		id:     m.nextID(),
		kind:   ValueConst,
		typ:    TypeFloat,
		konst:  v,
		module: m,
	}
	m.consts = append(m.consts, c)
	return c
}

// Consts returns the constant pool in creation order.
func (m *Module) Consts() []*Value { return m.consts }

// NewFunc creates a function with an empty entry block.
func (m *Module) NewFunc(name string, linkage Linkage) (*Func, error) {
	if m.sealed {
		return nil, ErrSealed
	}
	if name == "" {
		return nil, fmt.Errorf("function name is empty")
	}
	if m.Func(name) != nil {
		return nil, fmt.Errorf("function @%s already defined", name)
	}
	f := &Func{
		Name:    name,
		Linkage: linkage,
		module:  m,
		used:    make(map[string]bool),
		suffix:  make(map[string]int),
	}
	f.newBlock("entry")
	m.Funcs = append(m.Funcs, f)
	return f, nil
}

// Func looks a function up by name.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// SetTarget records the target triple and data layout. Instructions are not touched.
func (m *Module) SetTarget(triple, dataLayout string) {
	m.Triple = triple
	m.DataLayout = dataLayout
}

// Finalize seals the module. Every function must be terminated.
func (m *Module) Finalize() error {
	var errs []error
	for _, f := range m.Funcs {
		if !f.Terminated() {
			errs = append(errs, fmt.Errorf("function @%s is not terminated", f.Name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	m.sealed = true
	return nil
}

// Sealed reports whether Finalize succeeded.
func (m *Module) Sealed() bool { return m.sealed }
