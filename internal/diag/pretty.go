package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color bool
}

// Pretty prints one line per diagnostic:
//
//	<location>: <SEV> <ID>: <message>
//
// followed by indented notes. Call Bag.Sort first for a stable order.
func Pretty(w io.Writer, bag *Bag, opts PrettyOpts) error {
	if w == nil || bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		sev := severityColor(d.Severity)
		if !opts.Color {
			sev.DisableColor()
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", d.Where, sev.Sprint(d.Severity), d.Code.ID(), d.Message); err != nil {
			return err
		}
		for _, note := range d.Notes {
			if _, err := fmt.Fprintf(w, "    note: %s\n", note); err != nil {
				return err
			}
		}
	}
	return nil
}

func severityColor(s Severity) *color.Color {
	switch s {
	case SevError:
		return color.New(color.FgRed, color.Bold)
	case SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
