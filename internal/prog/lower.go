package prog

import (
	"fmt"

	"floatc/internal/ir"
	"floatc/internal/session"
)

// Lower emits p as a new function of the session's module and terminates it.
// Local failures (bad operator, unknown variable) are reported through the
// session and lowering continues with the next statement. Only errors that
// leave the function unusable are returned.
func Lower(s *session.Session, p *Program) error {
	if p == nil {
		return fmt.Errorf("nil program")
	}
	name := p.Function
	if name == "" {
		name = "main"
	}
	if _, err := s.CreateFunction(name, p.Linkage); err != nil {
		return fmt.Errorf("program %s: %w", p.Name, err)
	}
	for i, stmt := range p.Stmts {
		s.At(i)
		if err := lowerStmt(s, stmt); err != nil && !session.IsLocal(err) {
			return fmt.Errorf("program %s: statement %d: %w", p.Name, i, err)
		}
	}
	s.At(-1)
	return s.Terminate()
}

func lowerStmt(s *session.Session, stmt Stmt) error {
	switch st := stmt.(type) {
	case Assign:
		v, err := lowerExpr(s, st.Expr)
		if err != nil {
			return err
		}
		_, err = s.Assign(st.Name, v)
		return err
	case Eval:
		_, err := lowerExpr(s, st.Expr)
		return err
	}
	return fmt.Errorf("unknown statement %T", stmt)
}

func isLeaf(e Expr) bool {
	_, ok := e.(Binary)
	return !ok
}

// lowerExpr emits e. Operand subtrees that compute something are emitted
// before leaf operands, left to right, so 8 + (4 * 2) yields the multiply
// first. A failed operand poisons the operation without a second report.
func lowerExpr(s *session.Session, e Expr) (*ir.Value, error) {
	switch e := e.(type) {
	case Const:
		return s.Constant(e.V), nil
	case Var:
		return s.Read(e.Name)
	case Binary:
		var lhs, rhs *ir.Value
		var lerr, rerr error
		if isLeaf(e.L) && !isLeaf(e.R) {
			rhs, rerr = lowerExpr(s, e.R)
			lhs, lerr = lowerExpr(s, e.L)
		} else {
			lhs, lerr = lowerExpr(s, e.L)
			rhs, rerr = lowerExpr(s, e.R)
		}
		for _, err := range []error{lerr, rerr} {
			if err != nil && !session.IsLocal(err) {
				return nil, err
			}
		}
		return s.Binary(e.Op, lhs, rhs)
	case nil:
		return nil, ir.ErrPoisonedOperand
	}
	return nil, fmt.Errorf("unknown expression %T", e)
}
