package ir

// Type is the type of an IR value.
type Type uint8

const (
	// TypeVoid is the type of instructions without a result.
	TypeVoid Type = iota
	// TypeFloat is IEEE-754 binary32.
	TypeFloat
	// TypePtr is the address of a stack slot.
	TypePtr
)

func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeFloat:
		return "float"
	case TypePtr:
		return "ptr"
	default:
		return "unknown"
	}
}
