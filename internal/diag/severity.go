package diag

import "strings"

// Severity orders diagnostics; a higher value is more severe.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError blocks the build unless diagnostics errors are allowed.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Name is the lowercase spelling used in JSON output.
func (s Severity) Name() string { return strings.ToLower(s.String()) }
