// Package prog describes the input of a compilation: an ordered list of
// assignments and expression statements over float32 values. Programs come
// from the builtin demos or from a floatc.toml manifest.
package prog

import (
	"strconv"
	"strings"

	"floatc/internal/ir"
)

// Expr is a constant, a variable read or a binary operation.
type Expr interface {
	isExpr()
}

type Const struct {
	V float32
}

type Var struct {
	Name string
}

// Binary applies Op to L and R. Op is not validated here; unsupported
// operators surface as diagnostics when the program is lowered.
type Binary struct {
	Op   ir.BinOp
	L, R Expr
}

func (Const) isExpr()  {}
func (Var) isExpr()    {}
func (Binary) isExpr() {}

// Stmt is an Assign or an Eval.
type Stmt interface {
	isStmt()
}

type Assign struct {
	Name string
	Expr Expr
}

// Eval computes Expr and discards the result.
type Eval struct {
	Expr Expr
}

func (Assign) isStmt() {}
func (Eval) isStmt()   {}

// Program is compiled into one function of a module.
type Program struct {
	Name     string
	Function string
	Linkage  ir.Linkage
	Stmts    []Stmt
}

// FormatExpr renders e with parentheses around nested operations.
func FormatExpr(e Expr) string {
	var sb strings.Builder
	formatExpr(&sb, e, false)
	return sb.String()
}

func formatExpr(sb *strings.Builder, e Expr, nested bool) {
	switch e := e.(type) {
	case Const:
		sb.WriteString(strconv.FormatFloat(float64(e.V), 'g', -1, 32))
	case Var:
		sb.WriteString(e.Name)
	case Binary:
		if nested {
			sb.WriteByte('(')
		}
		formatExpr(sb, e.L, true)
		sb.WriteByte(' ')
		sb.WriteString(e.Op.String())
		sb.WriteByte(' ')
		formatExpr(sb, e.R, true)
		if nested {
			sb.WriteByte(')')
		}
	default:
		sb.WriteString("<nil>")
	}
}

// FormatStmt renders s as "name = expr" or "expr".
func FormatStmt(s Stmt) string {
	switch s := s.(type) {
	case Assign:
		return s.Name + " = " + FormatExpr(s.Expr)
	case Eval:
		return FormatExpr(s.Expr)
	}
	return "<nil>"
}

func (p *Program) String() string {
	var sb strings.Builder
	for i, s := range p.Stmts {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(FormatStmt(s))
	}
	return sb.String()
}
