package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/cartoon-raccoon/verdigris/opcode"
)

// Run steps the VM until it halts or fails, returning the terminal error (nil
// on a clean Hlt).
func (m *VM) Run() error {
	for {
		halted, err := m.RunOnce()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// RunOnce executes a single instruction and reports whether it was Hlt
// (spec.md §9 "Run returns true iff the executed step was Hlt").
func (m *VM) RunOnce() (bool, error) {
	if m.state == Halted || m.state == Failed {
		return m.state == Halted, m.lastErr
	}
	m.state = Running

	halted, err := m.step()
	if err != nil {
		m.state = Failed
		m.lastErr = err
		return false, err
	}
	if halted {
		m.state = Halted
	}
	return halted, nil
}

// fetchByte reads one byte at pc and advances it, or returns SegFault.
func (m *VM) fetchByte() (byte, error) {
	if int(m.pc) >= len(m.program) {
		return 0, &Error{Kind: SegFault, Detail: fmt.Sprintf("pc %d beyond program end (%d bytes)", m.pc, len(m.program))}
	}
	b := m.program[m.pc]
	m.pc++
	return b, nil
}

// fetchU32 reads a little-endian uint32 at pc and advances it by 4.
func (m *VM) fetchU32() (uint32, error) {
	if int(m.pc)+4 > len(m.program) {
		return 0, &Error{Kind: SegFault, Detail: fmt.Sprintf("pc %d: truncated 4-byte operand", m.pc)}
	}
	v := binary.LittleEndian.Uint32(m.program[m.pc : m.pc+4])
	m.pc += 4
	return v, nil
}

// regIndex validates and returns a register index.
func regIndex(b byte) (int, error) {
	if b >= numRegisters {
		return 0, &Error{Kind: SegFault, Detail: fmt.Sprintf("register index %d out of range", b)}
	}
	return int(b), nil
}

// readModeTagged reads a mode byte followed by its mode-specific value,
// resolving to a plain int32 (spec.md §6: mode 0 immediate, mode 1 pointer
// dereference into the heap, mode 2 register copy).
func (m *VM) readModeTagged() (int32, error) {
	mode, err := m.fetchByte()
	if err != nil {
		return 0, err
	}
	switch mode {
	case 0:
		v, err := m.fetchU32()
		if err != nil {
			return 0, err
		}
		return int32(v), nil
	case 1:
		addr, err := m.fetchU32()
		if err != nil {
			return 0, err
		}
		return m.readHeapI32(addr)
	case 2:
		regByte, err := m.fetchByte()
		if err != nil {
			return 0, err
		}
		idx, err := regIndex(regByte)
		if err != nil {
			return 0, err
		}
		return m.registers[idx], nil
	default:
		return 0, &Error{Kind: OpcodeErr, Detail: fmt.Sprintf("unknown operand mode %d", mode)}
	}
}

// readHeapI32 reads a little-endian int32 out of the heap at addr.
func (m *VM) readHeapI32(addr uint32) (int32, error) {
	if int(addr)+4 > len(m.heap) {
		return 0, &Error{Kind: SegFault, Detail: fmt.Sprintf("heap read at %d beyond heap of %d bytes", addr, len(m.heap))}
	}
	return int32(binary.LittleEndian.Uint32(m.heap[addr : addr+4])), nil
}

// step fetches, decodes, and executes exactly one instruction.
func (m *VM) step() (halted bool, err error) {
	opByte, err := m.fetchByte()
	if err != nil {
		return false, err
	}
	op := opcode.Decode(opByte)

	switch op {
	case opcode.Hlt:
		fmt.Fprintln(m.Stderr, "vm: halt")
		return true, nil

	case opcode.Mov:
		destByte, err := m.fetchByte()
		if err != nil {
			return false, err
		}
		dest, err := regIndex(destByte)
		if err != nil {
			return false, err
		}
		value, err := m.readModeTagged()
		if err != nil {
			return false, err
		}
		m.registers[dest] = value
		return false, nil

	case opcode.Jmp, opcode.JmpF, opcode.JmpB, opcode.Jeq, opcode.Jne:
		regByte, err := m.fetchByte()
		if err != nil {
			return false, err
		}
		idx, err := regIndex(regByte)
		if err != nil {
			return false, err
		}
		target := m.registers[idx]
		switch op {
		case opcode.Jmp:
			m.pc = uint32(target)
		case opcode.JmpF:
			m.pc += uint32(target)
		case opcode.JmpB:
			m.pc -= uint32(target)
		case opcode.Jeq:
			if m.flag {
				m.pc = uint32(target)
			}
		case opcode.Jne:
			if !m.flag {
				m.pc = uint32(target)
			}
		}
		return false, nil

	case opcode.Cmp, opcode.Lt, opcode.Gt, opcode.Le, opcode.Ge:
		aByte, err := m.fetchByte()
		if err != nil {
			return false, err
		}
		bByte, err := m.fetchByte()
		if err != nil {
			return false, err
		}
		a, err := regIndex(aByte)
		if err != nil {
			return false, err
		}
		b, err := regIndex(bByte)
		if err != nil {
			return false, err
		}
		ra, rb := m.registers[a], m.registers[b]
		switch op {
		case opcode.Cmp:
			m.flag = ra == rb
		case opcode.Lt:
			m.flag = ra < rb
		case opcode.Gt:
			m.flag = ra > rb
		case opcode.Le:
			m.flag = ra <= rb
		case opcode.Ge:
			m.flag = ra >= rb
		}
		return false, nil

	case opcode.Add, opcode.Sub, opcode.Mul, opcode.Div:
		aByte, err := m.fetchByte()
		if err != nil {
			return false, err
		}
		bByte, err := m.fetchByte()
		if err != nil {
			return false, err
		}
		dByte, err := m.fetchByte()
		if err != nil {
			return false, err
		}
		a, err := regIndex(aByte)
		if err != nil {
			return false, err
		}
		b, err := regIndex(bByte)
		if err != nil {
			return false, err
		}
		d, err := regIndex(dByte)
		if err != nil {
			return false, err
		}
		ra, rb := m.registers[a], m.registers[b]
		switch op {
		case opcode.Add:
			m.registers[d] = ra + rb
		case opcode.Sub:
			m.registers[d] = ra - rb
		case opcode.Mul:
			m.registers[d] = ra * rb
		case opcode.Div:
			if rb == 0 {
				return false, &Error{Kind: OpcodeErr, Opcode: op, Detail: "division by zero"}
			}
			m.registers[d] = ra / rb
			m.remainder = ra % rb
		}
		return false, nil

	case opcode.Aloc:
		n, err := m.readModeTagged()
		if err != nil {
			return false, err
		}
		if n < 0 {
			return false, &Error{Kind: OpcodeErr, Opcode: op, Detail: "negative allocation size"}
		}
		if m.MaxHeapBytes != 0 && uint32(len(m.heap))+uint32(n) > m.MaxHeapBytes {
			return false, &Error{Kind: OutOfMemory, Opcode: op, Detail: fmt.Sprintf("heap growth to %d exceeds ceiling %d", len(m.heap)+int(n), m.MaxHeapBytes)}
		}
		m.heap = append(m.heap, make([]byte, n)...)
		return false, nil

	case opcode.Dalc:
		n, err := m.readModeTagged()
		if err != nil {
			return false, err
		}
		if n < 0 || int(n) > len(m.heap) {
			return false, &Error{Kind: OpcodeErr, Opcode: op, Detail: fmt.Sprintf("cannot shrink heap of %d bytes by %d", len(m.heap), n)}
		}
		m.heap = m.heap[:len(m.heap)-int(n)]
		return false, nil

	case opcode.Igl:
		return false, &Error{Kind: IglOpcode, Detail: fmt.Sprintf("byte 0x%02x at pc %d", opByte, m.pc-1)}

	default:
		if opcode.Reserved(op) {
			return false, &Error{Kind: Unsupported, Opcode: op, Detail: "not yet implemented"}
		}
		return false, &Error{Kind: IglOpcode, Detail: fmt.Sprintf("byte 0x%02x at pc %d", opByte, m.pc-1)}
	}
}
