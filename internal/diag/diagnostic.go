package diag

import "fmt"

// Location points at a statement of a function. Stmt is -1 when unknown.
type Location struct {
	Func string
	Stmt int
}

// NoLocation is used for module-wide diagnostics.
var NoLocation = Location{Stmt: -1}

func (l Location) String() string {
	switch {
	case l.Func == "" && l.Stmt < 0:
		return "<module>"
	case l.Stmt < 0:
		return "@" + l.Func
	case l.Func == "":
		return fmt.Sprintf("stmt %d", l.Stmt)
	}
	return fmt.Sprintf("@%s stmt %d", l.Func, l.Stmt)
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Where    Location
	Notes    []string
}

func New(sev Severity, code Code, where Location, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Where: where, Message: msg}
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(d.Notes, msg)
	return d
}
