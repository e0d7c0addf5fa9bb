package vm

import (
	"fmt"

	"github.com/cartoon-raccoon/verdigris/opcode"
)

// Kind categorizes a runtime error (spec.md §7 "VM" kinds).
type Kind int

const (
	IglOpcode Kind = iota
	SegFault
	OpcodeErr
	Unsupported
	// OutOfMemory is the configurable-ceiling error spec.md §5 recommends
	// implementations impose on unbounded heap growth.
	OutOfMemory
)

// Error is a typed VM runtime error. The VM never panics on well-formed
// bytecode; malformed bytecode produces one of these instead.
type Error struct {
	Kind   Kind
	Opcode opcode.Opcode
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case IglOpcode:
		return "illegal opcode"
	case SegFault:
		return fmt.Sprintf("segmentation fault: %s", e.Detail)
	case OpcodeErr:
		return fmt.Sprintf("opcode error: %s", e.Detail)
	case Unsupported:
		return fmt.Sprintf("unsupported opcode: %s", e.Opcode)
	case OutOfMemory:
		return fmt.Sprintf("out of memory: %s", e.Detail)
	default:
		return "vm error"
	}
}
