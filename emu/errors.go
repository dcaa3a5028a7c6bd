package emu

import "fmt"

// ErrCategory names a fatal error taxonomy entry (spec.md §7).
type ErrCategory uint8

const (
	ErrAlignment ErrCategory = iota
	ErrAuthentication
	ErrBTIViolation
	ErrUnallocated
	ErrUDF
	ErrHostTrapAbort
	ErrUnimplementedSVE
)

func (c ErrCategory) String() string {
	switch c {
	case ErrAlignment:
		return "alignment fault"
	case ErrAuthentication:
		return "authentication failure"
	case ErrBTIViolation:
		return "BTI violation"
	case ErrUnallocated:
		return "unallocated/unimplemented opcode"
	case ErrUDF:
		return "UDF"
	case ErrHostTrapAbort:
		return "host-trap abort"
	case ErrUnimplementedSVE:
		return "unimplemented SVE arm"
	default:
		return "unknown error"
	}
}

// SimError is the fatal-error type every error category in spec.md §7
// surfaces as. All fatal categories terminate the driver loop with a
// printed location and register/opcode dump; nothing is retried.
type SimError struct {
	Category ErrCategory
	PC       uint64
	Opcode   uint32
	Detail   string
}

func (e *SimError) Error() string {
	return fmt.Sprintf("%s at PC=0x%X opcode=0x%08X: %s", e.Category, e.PC, e.Opcode, e.Detail)
}
