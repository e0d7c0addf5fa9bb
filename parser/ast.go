package parser

import (
	"github.com/cartoon-raccoon/verdigris/opcode"
	"github.com/cartoon-raccoon/verdigris/token"
)

// Operand is a single instruction argument, tagged by which literal Kind bit
// it occupies (spec.md §3 "Operand").
type Operand struct {
	Kind     opcode.OperandKind
	Register uint8
	Pointer  string
	Label    string
	Num      int32
	Pos      token.Position
}

// ItemType identifies which variant an Item holds.
type ItemType int

const (
	ItemInstruction ItemType = iota
	ItemLabelStart
	ItemLabelEnd
	ItemDirective
	ItemStringLiteral
)

// Item is a single parsed unit of the assembly source (spec.md §3
// "Parsed item").
type Item struct {
	Type ItemType
	Pos  token.Position

	Opcode   opcode.Opcode
	Operands []Operand

	LabelName string

	Directive token.Directive

	StringValue string
}
