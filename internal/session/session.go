package session

import (
	"errors"
	"fmt"

	"floatc/internal/diag"
	"floatc/internal/ir"
)

// Session assembles one module. Emission goes to the function created last.
type Session struct {
	mod      *ir.Module
	fn       *ir.Func
	builder  *ir.Builder
	tables   map[*ir.Func]*SymbolTable
	reporter diag.Reporter
	stmt     int
}

// New starts a session for a module called moduleName. A nil reporter drops
// diagnostics.
func New(moduleName string, reporter diag.Reporter) *Session {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Session{
		mod:      ir.NewModule(moduleName),
		tables:   make(map[*ir.Func]*SymbolTable),
		reporter: reporter,
		stmt:     -1,
	}
}

func (s *Session) Module() *ir.Module { return s.mod }

// Func returns the current function, nil before CreateFunction.
func (s *Session) Func() *ir.Func { return s.fn }

// Symbols returns the variable table of the current function.
func (s *Session) Symbols() *SymbolTable {
	if s.fn == nil {
		return nil
	}
	return s.tables[s.fn]
}

// At sets the statement index attached to subsequent diagnostics.
func (s *Session) At(stmt int) { s.stmt = stmt }

func (s *Session) where() diag.Location {
	loc := diag.Location{Stmt: s.stmt}
	if s.fn != nil {
		loc.Func = s.fn.Name
	}
	return loc
}

// CreateFunction adds a void function without parameters and moves the
// insertion point to the end of its entry block.
func (s *Session) CreateFunction(name string, linkage ir.Linkage) (*ir.Func, error) {
	f, err := s.mod.NewFunc(name, linkage)
	if err != nil {
		return nil, err
	}
	s.fn = f
	s.builder = ir.NewBuilder(f)
	s.tables[f] = NewSymbolTable()
	return f, nil
}

// Constant materializes a fresh constant.
func (s *Session) Constant(v float32) *ir.Value {
	return s.mod.Const(v)
}

// Binary emits lhs op rhs. A nil operand means an earlier failure; it
// propagates without a new diagnostic. An unsupported operator is reported
// even when an operand is already poisoned.
func (s *Session) Binary(op ir.BinOp, lhs, rhs *ir.Value) (*ir.Value, error) {
	if s.builder == nil {
		return nil, ErrNoFunction
	}
	if _, err := op.Opcode(); err != nil {
		diag.ReportError(s.reporter, diag.IRInvalidOperator, s.where(), err.Error()).
			WithNote("supported operators: + - * /").
			Emit()
		return nil, err
	}
	v, err := s.builder.Binary(op, lhs, rhs)
	if err != nil {
		if !errors.Is(err, ir.ErrPoisonedOperand) {
			s.report(err)
		}
		return nil, err
	}
	return v, nil
}

// Assign stores v into the variable name. The first assignment of a name
// allocates its slot at the head of the entry block.
func (s *Session) Assign(name string, v *ir.Value) (*ir.Instr, error) {
	if s.builder == nil {
		return nil, ErrNoFunction
	}
	if v == nil {
		return nil, ir.ErrPoisonedOperand
	}
	if name == "" {
		diag.ReportError(s.reporter, diag.IREmptyName, s.where(), ErrEmptyName.Error()).Emit()
		return nil, ErrEmptyName
	}
	if s.fn.Terminated() {
		s.report(ir.ErrTerminated)
		return nil, ir.ErrTerminated
	}
	if err := s.checkValue(v); err != nil {
		s.report(err)
		return nil, err
	}
	table := s.tables[s.fn]
	slot, ok := table.Lookup(name)
	if !ok {
		var err error
		slot, err = s.builder.EntryAlloca(canonical(name))
		if err != nil {
			s.report(err)
			return nil, err
		}
		table.bind(name, slot)
	}
	in, err := s.builder.Store(v, slot)
	if err != nil {
		s.report(err)
		return nil, err
	}
	return in, nil
}

// checkValue rejects values the store would refuse, so a failing Assign does
// not leave an orphan slot behind.
func (s *Session) checkValue(v *ir.Value) error {
	if v.Module() != s.mod || (v.Func() != nil && v.Func() != s.fn) {
		return ir.ErrForeignValue
	}
	if v.Type() != ir.TypeFloat {
		return fmt.Errorf("%w: %s is %s, want %s", ir.ErrTypeMismatch, v.Ref(), v.Type(), ir.TypeFloat)
	}
	return nil
}

// Read loads the current value of name. Reading an unassigned name reports
// an UnknownVariableError and emits nothing.
func (s *Session) Read(name string) (*ir.Value, error) {
	if s.builder == nil {
		return nil, ErrNoFunction
	}
	slot, ok := s.tables[s.fn].Lookup(name)
	if !ok {
		err := &UnknownVariableError{Name: name}
		diag.ReportError(s.reporter, diag.IRUnknownVariable, s.where(), err.Error()).Emit()
		return nil, err
	}
	v, err := s.builder.Load(slot, canonical(name)+".load")
	if err != nil {
		s.report(err)
		return nil, err
	}
	return v, nil
}

// Terminate appends the void return. It succeeds once per function.
func (s *Session) Terminate() error {
	if s.builder == nil {
		return ErrNoFunction
	}
	if _, err := s.builder.RetVoid(); err != nil {
		s.report(err)
		return err
	}
	return nil
}

// Finalize seals the module and returns it.
func (s *Session) Finalize() (*ir.Module, error) {
	if err := s.mod.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize module %q: %w", s.mod.Name, err)
	}
	return s.mod, nil
}

func (s *Session) report(err error) {
	code := diag.IRInfo
	if errors.Is(err, ir.ErrTerminated) {
		code = diag.IRTerminated
	}
	diag.ReportError(s.reporter, code, s.where(), err.Error()).Emit()
}
