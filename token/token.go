// Package token defines the tagged token stream produced by the lexer.
package token

import (
	"fmt"

	"github.com/cartoon-raccoon/verdigris/opcode"
)

// Type identifies which variant a Token holds.
type Type int

const (
	EOF Type = iota
	OpcodeTok
	IntLit
	StrLit
	RegisterTok
	PointerTok
	LabelDeclStart
	LabelDeclEnd
	LabelUse
	DirectiveTok
)

var typeNames = map[Type]string{
	EOF:            "EOF",
	OpcodeTok:      "OPCODE",
	IntLit:         "INT",
	StrLit:         "STRING",
	RegisterTok:    "REGISTER",
	PointerTok:     "POINTER",
	LabelDeclStart: "LABEL_DECL_START",
	LabelDeclEnd:   "LABEL_DECL_END",
	LabelUse:       "LABEL_USE",
	DirectiveTok:   "DIRECTIVE",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Directive enumerates the `.word` directives recognised by the lexer.
type Directive int

const (
	DirCode Directive = iota
	DirData
	DirString
	DirGlobal
)

var directiveNames = map[string]Directive{
	"code":   DirCode,
	"data":   DirData,
	"string": DirString,
	"global": DirGlobal,
}

// LookupDirective resolves the bare word following a `.` to a Directive.
func LookupDirective(word string) (Directive, bool) {
	d, ok := directiveNames[word]
	return d, ok
}

func (d Directive) String() string {
	switch d {
	case DirCode:
		return "code"
	case DirData:
		return "data"
	case DirString:
		return "string"
	case DirGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Position is the source location a token began at.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a tagged lexical unit. Exactly one payload field is meaningful,
// selected by Type.
type Token struct {
	Type Type
	Pos  Position

	Literal   string          // raw text, for error messages
	Int       int32           // IntLit
	Str       string          // StrLit: decoded payload; LabelUse/LabelDeclStart: name
	Register  uint8           // RegisterTok
	Pointer   string          // PointerTok: opaque inner text
	Opcode    opcode.Opcode   // OpcodeTok
	Directive Directive       // DirectiveTok
}

func (t Token) String() string {
	switch t.Type {
	case OpcodeTok:
		return fmt.Sprintf("%s(%s)@%s", t.Type, t.Opcode, t.Pos)
	case IntLit:
		return fmt.Sprintf("%s(%d)@%s", t.Type, t.Int, t.Pos)
	case StrLit, LabelUse, LabelDeclStart:
		return fmt.Sprintf("%s(%q)@%s", t.Type, t.Str, t.Pos)
	case RegisterTok:
		return fmt.Sprintf("%s($%d)@%s", t.Type, t.Register, t.Pos)
	case PointerTok:
		return fmt.Sprintf("%s([%s])@%s", t.Type, t.Pointer, t.Pos)
	case DirectiveTok:
		return fmt.Sprintf("%s(.%s)@%s", t.Type, t.Directive, t.Pos)
	default:
		return fmt.Sprintf("%s@%s", t.Type, t.Pos)
	}
}
