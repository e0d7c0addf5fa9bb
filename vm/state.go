// Package vm implements the Verdigris bytecode VM: a fetch-decode-execute
// loop over a flat byte program, 32 signed 32-bit registers, a flag, a
// remainder register, a growable heap, and a reserved stack (spec.md §3,
// §4.4).
package vm

import (
	"fmt"
	"io"
	"os"
)

// State is the VM's run-state machine (spec.md §4.4).
type State int

const (
	Ready State = iota
	Running
	Halted
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

const numRegisters = 32

// VM owns all mutable execution state exclusively; there are no shared
// references into it (spec.md §9 "Heap/stack ownership").
type VM struct {
	registers [numRegisters]int32
	program   []byte
	pc        uint32

	flag      bool
	remainder int32

	heap  []byte
	stack []byte

	state   State
	lastErr error

	// MaxHeapBytes caps cumulative Aloc growth; 0 means unbounded. Set from
	// config (spec.md §5: "implementation SHOULD impose a configurable
	// ceiling and return OutOfMemory").
	MaxHeapBytes uint32

	// Stderr receives the Hlt notice and any future Prt output. Defaults to
	// os.Stderr for the halt notice per spec.md §4.4 ("print a halt notice
	// to stderr"); kept overridable for tests and the REPL.
	Stderr io.Writer
}

// New creates a VM with an initial (possibly empty) program.
func New(program []byte) *VM {
	return &VM{
		program: append([]byte(nil), program...),
		state:   Ready,
		Stderr:  os.Stderr,
	}
}

// AddBytes appends to the program without moving pc (spec.md §3
// "Lifecycles").
func (m *VM) AddBytes(b []byte) {
	m.program = append(m.program, b...)
}

// PC returns the current program counter.
func (m *VM) PC() uint32 { return m.pc }

// State returns the VM's current run-state.
func (m *VM) State() State { return m.state }

// LastError returns the error that moved the VM to Failed, if any.
func (m *VM) LastError() error { return m.lastErr }

// Register returns register i's value. Both terminal states (Halted,
// Failed) leave registers observable for post-mortem inspection.
func (m *VM) Register(i int) (int32, error) {
	if i < 0 || i >= numRegisters {
		return 0, fmt.Errorf("register index %d out of range [0,%d)", i, numRegisters)
	}
	return m.registers[i], nil
}

// TestRegister is Register under the name used by the original VM's
// bounds-checked accessor (original_source vdg-oxidizer/src/vm/vm.rs).
func (m *VM) TestRegister(reg int) (int32, error) {
	return m.Register(reg)
}

// Registers returns a snapshot of all 32 registers.
func (m *VM) Registers() [numRegisters]int32 {
	return m.registers
}

// Flag returns the comparison flag.
func (m *VM) Flag() bool { return m.flag }

// Remainder returns the remainder register (set by the last Div).
func (m *VM) Remainder() int32 { return m.remainder }

// HeapSize returns the current heap length.
func (m *VM) HeapSize() int { return len(m.heap) }

// Heap is HeapSize under the original VM's accessor name (original_source
// vdg-oxidizer/src/vm/vm.rs heap).
func (m *VM) Heap() int { return m.HeapSize() }

// Program returns the full program byte vector loaded so far.
func (m *VM) Program() []byte { return m.program }

// SetPC sets the program counter directly. Intended for embedders that need
// to choose an entry point other than 0 (spec.md §4.4's fetch loop otherwise
// only ever advances pc itself).
func (m *VM) SetPC(addr uint32) { m.pc = addr }

// ReserveStack grows the stack's backing capacity to at least n bytes
// without changing its logical length. The stack itself is reserved for
// Call/Ret frame discipline (spec.md §3, §9 open question 4) and unused by
// any opcode implemented so far; this only lets an embedder size it ahead of
// time from configuration.
func (m *VM) ReserveStack(n uint32) {
	if uint32(cap(m.stack)) >= n {
		return
	}
	buf := make([]byte, len(m.stack), n)
	copy(buf, m.stack)
	m.stack = buf
}

// StackCapacity returns the stack's reserved capacity.
func (m *VM) StackCapacity() int { return cap(m.stack) }

// DumpRegisters renders all 32 registers, one per line, following the shape
// of the original Rust VM's dump_registers (original_source
// vdg-oxidizer/src/vm/vm.rs).
func (m *VM) DumpRegisters() string {
	out := "Register dump\n"
	for i := 0; i < numRegisters; i++ {
		out += fmt.Sprintf("%02d: %d\n", i, m.registers[i])
	}
	out += "End of register dump\n"
	return out
}

// DumpProgram renders the raw loaded program bytes, following the shape of
// dump_program in the same original source.
func (m *VM) DumpProgram() string {
	return fmt.Sprintf("Program (%d bytes): %v\n", len(m.program), m.program)
}
