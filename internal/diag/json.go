package diag

import (
	"encoding/json"
	"io"
)

// LocationJSON is the serialized form of a Location.
type LocationJSON struct {
	Func string `json:"func,omitempty"`
	Stmt *int   `json:"stmt,omitempty"`
}

// DiagnosticJSON is the serialized form of a Diagnostic.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []string     `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root object written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput converts the bag without serializing it.
func BuildDiagnosticsOutput(bag *Bag) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	if bag == nil {
		return out
	}
	for _, d := range bag.Items() {
		loc := LocationJSON{Func: d.Where.Func}
		if d.Where.Stmt >= 0 {
			stmt := d.Where.Stmt
			loc.Stmt = &stmt
		}
		out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
			Severity: d.Severity.Name(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: loc,
			Notes:    d.Notes,
		})
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the bag as one indented JSON document.
func JSON(w io.Writer, bag *Bag) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag))
}
