package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// IR construction
	IRInfo            Code = 1000
	IRInvalidOperator Code = 1001
	IRUnknownVariable Code = 1003
	IREmptyName       Code = 1004
	IRTerminated      Code = 1005

	// Verifier
	VerFailed Code = 2001

	// Target resolution and lowering
	TgtUnknown     Code = 3001
	TgtUnsupported Code = 3002
	TgtEmitFailed  Code = 3003

	// I/O
	IOWriteError Code = 4001
	IOCacheError Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown error",
	IRInfo:            "IR information",
	IRInvalidOperator: "Unsupported binary operator",
	IRUnknownVariable: "Read of an unassigned variable",
	IREmptyName:       "Empty variable name",
	IRTerminated:      "Emission into a terminated function",
	VerFailed:         "IR verification failed",
	TgtUnknown:        "Unknown target triple",
	TgtUnsupported:    "Target not supported by backend",
	TgtEmitFailed:     "Code generation failed",
	IOWriteError:      "Cannot write output",
	IOCacheError:      "Object cache error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("VER%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TGT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
