package prog

import (
	"fmt"
	"maps"
	"slices"

	"floatc/internal/ir"
)

func num(v float32) Expr { return Const{V: v} }

func bin(op byte, l, r Expr) Expr { return Binary{Op: ir.BinOp(op), L: l, R: r} }

var builtins = map[string]func() *Program{
	// 8 + (4 * 2)
	"arith": func() *Program {
		return &Program{
			Name:     "arith",
			Function: "main",
			Stmts: []Stmt{
				Eval{Expr: bin('+', num(8), bin('*', num(4), num(2)))},
			},
		}
	},
	// a = 8 + (4 * 2); b = a / 4
	"vars": func() *Program {
		return &Program{
			Name:     "vars",
			Function: "main",
			Stmts: []Stmt{
				Assign{Name: "a", Expr: bin('+', num(8), bin('*', num(4), num(2)))},
				Assign{Name: "b", Expr: bin('/', Var{Name: "a"}, num(4))},
			},
		}
	},
	// two independent mistakes, then a valid statement
	"broken": func() *Program {
		return &Program{
			Name:     "broken",
			Function: "main",
			Stmts: []Stmt{
				Assign{Name: "x", Expr: bin('%', num(1), num(2))},
				Assign{Name: "y", Expr: bin('+', Var{Name: "ghost"}, num(1))},
				Assign{Name: "z", Expr: bin('*', num(3), num(4))},
			},
		}
	},
}

// Builtin returns a fresh copy of the named demo program.
func Builtin(name string) (*Program, error) {
	mk, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown program %q (available: %v)", name, BuiltinNames())
	}
	return mk(), nil
}

// BuiltinNames lists the demo programs in sorted order.
func BuiltinNames() []string {
	return slices.Sorted(maps.Keys(builtins))
}
