package prog

import (
	"os"
	"path/filepath"
	"testing"

	"floatc/internal/diag"
	"floatc/internal/ir"
	"floatc/internal/session"
)

func lower(t *testing.T, p *Program) (*session.Session, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(32)
	s := session.New(p.Name, diag.BagReporter{Bag: bag})
	if err := Lower(s, p); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	return s, bag
}

func TestLower_ArithOrder(t *testing.T) {
	p, err := Builtin("arith")
	if err != nil {
		t.Fatal(err)
	}
	s, bag := lower(t, p)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	instrs := s.Func().Entry().Instrs
	if len(instrs) != 3 {
		t.Fatalf("got %d instructions", len(instrs))
	}
	mul, add := instrs[0], instrs[1]
	if mul.Op != ir.OpFMul || add.Op != ir.OpFAdd || instrs[2].Op != ir.OpRet {
		t.Fatalf("ops = %s, %s, %s", mul.Op, add.Op, instrs[2].Op)
	}
	// constants are materialized 4, 2, then 8
	consts := s.Module().Consts()
	want := []float32{4, 2, 8}
	if len(consts) != len(want) {
		t.Fatalf("consts = %d", len(consts))
	}
	for i, c := range consts {
		if v, _ := c.Float(); v != want[i] {
			t.Errorf("const %d = %v, want %v", i, v, want[i])
		}
	}
	if add.Operands[1] != mul.Result() {
		t.Error("add does not consume the product")
	}
	if err := ir.Verify(s.Func()); err != nil {
		t.Fatal(err)
	}
}

func TestLower_Vars(t *testing.T) {
	p, err := Builtin("vars")
	if err != nil {
		t.Fatal(err)
	}
	s, bag := lower(t, p)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	fr, err := ir.Eval(s.Func())
	if err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]float32{"a": 16, "b": 4} {
		slot, ok := s.Symbols().Lookup(name)
		if !ok {
			t.Fatalf("no slot for %s", name)
		}
		if got, _ := fr.Slot(slot); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestLower_BrokenKeepsGoing(t *testing.T) {
	p, err := Builtin("broken")
	if err != nil {
		t.Fatal(err)
	}
	s, bag := lower(t, p)
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("diagnostics = %v", items)
	}
	if items[0].Code != diag.IRInvalidOperator || items[0].Where.Stmt != 0 {
		t.Errorf("first = %+v", items[0])
	}
	if items[1].Code != diag.IRUnknownVariable || items[1].Where.Stmt != 1 {
		t.Errorf("second = %+v", items[1])
	}
	if names := s.Symbols().Names(); len(names) != 1 || names[0] != "z" {
		t.Errorf("variables = %v, want [z]", names)
	}
	if !s.Func().Terminated() {
		t.Error("function not terminated")
	}
	if err := ir.Verify(s.Func()); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	if _, err := Builtin("nope"); err == nil {
		t.Fatal("expected error")
	}
	if got := BuiltinNames(); len(got) != 3 || got[0] != "arith" {
		t.Errorf("BuiltinNames = %v", got)
	}
}

func TestFormat(t *testing.T) {
	p, err := Builtin("vars")
	if err != nil {
		t.Fatal(err)
	}
	want := "a = 8 + (4 * 2); b = a / 4"
	if got := p.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

const manifestText = `
[package]
name = "demo"

[build]
target = "x86_64-unknown-linux-gnu"
output = "out/demo.o"
linkage = "external"
function = "compute"

[[stmt]]
let = "a"
expr = ["+", 8, ["*", 4, 2]]

[[stmt]]
let = "b"
expr = ["/", "a", 0.5]

[[stmt]]
expr = "b"
`

func writeManifest(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, manifestText)
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	m, ok, err := LoadManifest(sub)
	if err != nil || !ok {
		t.Fatalf("LoadManifest = %v, %v", ok, err)
	}
	if m.Root != root {
		t.Errorf("Root = %q, want %q", m.Root, root)
	}
	if got, want := m.OutputPath(), filepath.Join(root, "out", "demo.o"); got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
	p, err := m.Program()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "demo" || p.Function != "compute" || p.Linkage != ir.LinkageExternal {
		t.Errorf("program = %+v", p)
	}
	if got, want := p.String(), "a = 8 + (4 * 2); b = a / 0.5; b"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
	s, bag := lower(t, p)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	if s.Func().Name != "compute" {
		t.Errorf("function = %s", s.Func().Name)
	}
}

func TestManifest_NotFound(t *testing.T) {
	_, ok, err := LoadManifest(t.TempDir())
	if err != nil || ok {
		t.Errorf("LoadManifest = %v, %v; want not found", ok, err)
	}
}

func TestManifest_Errors(t *testing.T) {
	tests := map[string]string{
		"no package":   "[build]\ntarget = \"x\"\n",
		"no name":      "[package]\n",
		"unknown key":  "[package]\nname = \"x\"\nsurprise = 1\n",
		"bad syntax":   "[package\n",
		"bad expr":     "[package]\nname = \"x\"\n[[stmt]]\nexpr = [\"+\", 1]\n",
		"bad operator": "[package]\nname = \"x\"\n[[stmt]]\nexpr = [\"++\", 1, 2]\n",
		"bad linkage":  "[package]\nname = \"x\"\n[build]\nlinkage = \"weak\"\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), text)
			m, err := LoadManifestFile(path)
			if err == nil {
				_, err = m.Program()
			}
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseExpr_UnsupportedOperatorDeferred(t *testing.T) {
	e, err := ParseExpr([]any{"%", int64(1), int64(2)})
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := e.(Binary); !ok || b.Op != ir.BinOp('%') {
		t.Errorf("got %#v", e)
	}
}
