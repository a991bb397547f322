package diag_test

import (
	"strings"
	"testing"

	"floatc/internal/diag"
)

func TestBag_LimitAndErrors(t *testing.T) {
	bag := diag.NewBag(2)
	r := diag.BagReporter{Bag: bag}
	diag.ReportWarning(r, diag.IRInfo, diag.NoLocation, "first").Emit()
	if bag.HasErrors() {
		t.Fatal("warning counted as error")
	}
	diag.ReportError(r, diag.IRUnknownVariable, diag.Location{Func: "main", Stmt: 1}, "unknown variable \"x\"").Emit()
	diag.ReportError(r, diag.IRInvalidOperator, diag.Location{Func: "main", Stmt: 2}, "dropped").Emit()
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("expected errors and warnings")
	}
}

func TestBag_SortDedup(t *testing.T) {
	bag := diag.NewBag(10)
	loc := func(stmt int) diag.Location { return diag.Location{Func: "main", Stmt: stmt} }
	bag.Add(diag.New(diag.SevError, diag.IRUnknownVariable, loc(3), "x"))
	bag.Add(diag.New(diag.SevError, diag.IRInvalidOperator, loc(1), "%"))
	bag.Add(diag.New(diag.SevError, diag.IRInvalidOperator, loc(1), "%"))
	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Where.Stmt != 1 || items[1].Where.Stmt != 3 {
		t.Errorf("unexpected order: %v", items)
	}
}

func TestPretty_Plain(t *testing.T) {
	bag := diag.NewBag(4)
	d := diag.New(diag.SevError, diag.IRInvalidOperator, diag.Location{Func: "main", Stmt: 0}, "invalid operator '%'").
		WithNote("supported operators: + - * /")
	bag.Add(d)
	var sb strings.Builder
	if err := diag.Pretty(&sb, bag, diag.PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	want := "@main stmt 0: ERROR IR1001: invalid operator '%'\n    note: supported operators: + - * /\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestCode_ID(t *testing.T) {
	tests := map[diag.Code]string{
		diag.IRInvalidOperator: "IR1001",
		diag.VerFailed:         "VER2001",
		diag.TgtUnknown:        "TGT3001",
		diag.IOWriteError:      "IO4001",
		diag.UnknownCode:       "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
}

func TestJSON(t *testing.T) {
	bag := diag.NewBag(10)
	r := diag.BagReporter{Bag: bag}
	diag.ReportError(r, diag.IRInvalidOperator, diag.Location{Func: "main", Stmt: 0}, "invalid operator '%'").
		WithNote("supported operators: + - * /").Emit()
	diag.ReportError(r, diag.TgtUnknown, diag.NoLocation, "unknown target").Emit()

	out := diag.BuildDiagnosticsOutput(bag)
	if out.Count != 2 {
		t.Fatalf("Count = %d", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Code != "IR1001" || first.Location.Stmt == nil || *first.Location.Stmt != 0 || len(first.Notes) != 1 {
		t.Errorf("unexpected first diagnostic: %+v", first)
	}
	if out.Diagnostics[1].Location.Stmt != nil || out.Diagnostics[1].Location.Func != "" {
		t.Errorf("no-location diagnostic should omit its location: %+v", out.Diagnostics[1].Location)
	}

	var sb strings.Builder
	if err := diag.JSON(&sb, bag); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"code": "TGT3001"`, `"count": 2`, `"stmt": 0`} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("JSON missing %s:\n%s", want, sb.String())
		}
	}
}
