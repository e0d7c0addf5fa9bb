// Package assembler implements the two-phase lowering from parsed items to
// a flat bytecode program (spec.md §4.3).
//
// Phase A walks the parsed items once, assigning every label its final byte
// offset before phase B emits a single operand. This avoids a fix-up list:
// by the time an operand referencing a label is encoded, the label's address
// is already known (spec.md §9 "Label forward references").
package assembler

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/cartoon-raccoon/verdigris/opcode"
	"github.com/cartoon-raccoon/verdigris/parser"
	"github.com/cartoon-raccoon/verdigris/token"
)

// Assemble runs phase A then phase B over items and returns the flat
// bytecode program, along with the symbol table built along the way (kept
// around for diagnostics; the VM never consults it).
func Assemble(items []parser.Item) ([]byte, *SymbolTable, error) {
	symtab, err := phaseA(items)
	if err != nil {
		return nil, nil, err
	}
	program, err := phaseB(items, symtab)
	if err != nil {
		return nil, nil, err
	}
	return program, symtab, nil
}

// phaseA assigns every label its final address and records data payloads.
func phaseA(items []parser.Item) (*SymbolTable, error) {
	symtab := NewSymbolTable()
	section := token.DirCode
	pendingGlobal := false
	var openLabel string

	var offset uint32
	for _, item := range items {
		switch item.Type {
		case parser.ItemDirective:
			if item.Directive == token.DirGlobal {
				pendingGlobal = true
				continue
			}
			section = item.Directive

		case parser.ItemLabelStart:
			kind := SymbolCode
			if section == token.DirData || section == token.DirString {
				kind = SymbolData
			}
			if err := symtab.Define(item.LabelName, kind, offset, item.Pos); err != nil {
				return nil, err
			}
			if pendingGlobal {
				symtab.SetGlobal(item.LabelName)
				pendingGlobal = false
			}
			openLabel = item.LabelName

		case parser.ItemLabelEnd:
			openLabel = ""

		case parser.ItemStringLiteral:
			payload := []byte(item.StringValue)
			if openLabel != "" {
				symtab.SetPayload(openLabel, payload)
			}
			offset += uint32(len(payload))

		case parser.ItemInstruction:
			size, err := instructionSize(item)
			if err != nil {
				return nil, err
			}
			offset += size
		}
	}

	return symtab, nil
}

// phaseB re-scans items, emitting bytes for instructions and string
// payloads, resolving every label/pointer reference against symtab.
func phaseB(items []parser.Item, symtab *SymbolTable) ([]byte, error) {
	var program []byte

	for _, item := range items {
		switch item.Type {
		case parser.ItemStringLiteral:
			program = append(program, []byte(item.StringValue)...)

		case parser.ItemInstruction:
			bytes, err := encodeInstruction(item, symtab)
			if err != nil {
				return nil, err
			}
			program = append(program, bytes...)
		}
	}

	return program, nil
}

// instructionSize returns an instruction's encoded byte length from its
// opcode and operand kinds (spec.md §6 encoding table).
func instructionSize(item parser.Item) (uint32, error) {
	switch item.Opcode {
	case opcode.Hlt:
		return 1, nil
	case opcode.Mov:
		return 3 + srcSize(item.Operands[1]), nil
	case opcode.Jmp, opcode.JmpF, opcode.JmpB, opcode.Jeq, opcode.Jne:
		return 2, nil
	case opcode.Cmp, opcode.Lt, opcode.Gt, opcode.Le, opcode.Ge:
		return 3, nil
	case opcode.Add, opcode.Sub, opcode.Mul, opcode.Div:
		return 4, nil
	case opcode.Aloc, opcode.Dalc:
		return 2 + srcSize(item.Operands[0]), nil
	default:
		// Reserved opcodes (Push/Pop/Call/Ret/.../Bsr): opcode byte only.
		return 1, nil
	}
}

// srcSize is the byte width of a mode-tagged operand value: 4 bytes for an
// immediate or resolved pointer, 1 byte for a register index.
func srcSize(op parser.Operand) uint32 {
	if op.Kind == opcode.KindRegister {
		return 1
	}
	return 4
}

// encodeInstruction emits one instruction's bytes, resolving label and
// pointer references through symtab.
func encodeInstruction(item parser.Item, symtab *SymbolTable) ([]byte, error) {
	opByte, ok := opcode.Encode(item.Opcode)
	if !ok {
		return nil, &Error{Kind: UnresolvedPointer, Name: item.Opcode.Mnemonic()}
	}

	switch item.Opcode {
	case opcode.Hlt:
		return []byte{opByte}, nil

	case opcode.Mov:
		dest := item.Operands[0]
		if dest.Kind != opcode.KindRegister {
			return nil, &Error{Kind: UnresolvedPointer, Name: "mov destination pointer", Pos: dest.Pos}
		}
		mode, value, err := encodeModeTagged(item.Operands[1], symtab)
		if err != nil {
			return nil, err
		}
		out := []byte{opByte, dest.Register, mode}
		return append(out, value...), nil

	case opcode.Jmp, opcode.JmpF, opcode.JmpB, opcode.Jeq, opcode.Jne:
		reg, err := resolveRegisterIndex(item.Operands[0])
		if err != nil {
			return nil, err
		}
		return []byte{opByte, reg}, nil

	case opcode.Cmp, opcode.Lt, opcode.Gt, opcode.Le, opcode.Ge:
		a, err := resolveRegisterIndex(item.Operands[0])
		if err != nil {
			return nil, err
		}
		b, err := resolveRegisterIndex(item.Operands[1])
		if err != nil {
			return nil, err
		}
		return []byte{opByte, a, b}, nil

	case opcode.Add, opcode.Sub, opcode.Mul, opcode.Div:
		return []byte{opByte, item.Operands[0].Register, item.Operands[1].Register, item.Operands[2].Register}, nil

	case opcode.Aloc, opcode.Dalc:
		mode, value, err := encodeModeTagged(item.Operands[0], symtab)
		if err != nil {
			return nil, err
		}
		out := []byte{opByte, mode}
		return append(out, value...), nil

	default:
		// Reserved opcode: encodes as a bare opcode byte. Executing it
		// yields Unsupported at the VM.
		return []byte{opByte}, nil
	}
}

// resolveRegisterIndex resolves an operand that the wire format encodes as a
// single register-index byte. A Register operand supplies its index
// directly; a NumLiteral operand is an alternate decimal syntax for the same
// index (spec.md §6 only ever has room for one reg:u8 byte here, so a
// literal target must already name a register in [0,31]). Pointer and
// LabelUse operands — accepted by the parser for Jmp as forward-looking
// syntax — have no defined encoding yet and are rejected here, the same way
// Mov's reserved pointer-mode destination is.
func resolveRegisterIndex(op parser.Operand) (byte, error) {
	switch op.Kind {
	case opcode.KindRegister:
		return op.Register, nil
	case opcode.KindNumLiteral:
		if op.Num < 0 || op.Num > 31 {
			return 0, &Error{Kind: UnresolvedPointer, Name: "register index out of range", Pos: op.Pos}
		}
		return byte(op.Num), nil
	default:
		return 0, &Error{Kind: UnresolvedPointer, Name: "jump target not yet encodable (reserved)", Pos: op.Pos}
	}
}

// encodeModeTagged emits the mode byte and value bytes shared by Mov's
// source operand and Aloc/Dalc's size operand (spec.md §6: mode 0 =
// immediate i32, mode 1 = pointer [reserved, 4-byte resolved value], mode 2 =
// register index).
func encodeModeTagged(op parser.Operand, symtab *SymbolTable) (byte, []byte, error) {
	switch op.Kind {
	case opcode.KindNumLiteral:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(op.Num))
		return 0, buf, nil

	case opcode.KindPointer:
		value, err := resolvePointerExpr(op.Pointer, symtab)
		if err != nil {
			return 0, nil, err
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(value))
		return 1, buf, nil

	case opcode.KindRegister:
		return 2, []byte{op.Register}, nil

	default:
		return 0, nil, &Error{Kind: UnresolvedPointer, Name: "unencodable operand", Pos: op.Pos}
	}
}

// resolvePointerExpr resolves a pointer's opaque text: a bare integer is an
// absolute offset; a bare label name resolves to its address; "label + N"
// resolves to address+N (spec.md §4.3, §6).
func resolvePointerExpr(text string, symtab *SymbolTable) (int32, error) {
	text = strings.TrimSpace(text)

	if n, err := strconv.ParseInt(text, 10, 32); err == nil {
		return int32(n), nil
	}

	name, delta := text, int32(0)
	if idx := strings.IndexByte(text, '+'); idx >= 0 {
		name = strings.TrimSpace(text[:idx])
		rest := strings.TrimSpace(text[idx+1:])
		n, err := strconv.ParseInt(rest, 10, 32)
		if err != nil {
			return 0, &Error{Kind: UnresolvedPointer, Name: text}
		}
		delta = int32(n)
	}

	sym, ok := symtab.Lookup(name)
	if !ok {
		return 0, &Error{Kind: UndefinedLabel, Name: name}
	}
	return int32(sym.Offset) + delta, nil
}

