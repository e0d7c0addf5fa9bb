// Package parser groups a token stream into typed instructions, directives,
// labels, and string literals, validating operand arity and kind against the
// opcode table as it goes.
package parser

import (
	"github.com/cartoon-raccoon/verdigris/opcode"
	"github.com/cartoon-raccoon/verdigris/token"
)

// Parser drains a fixed token slice, front to back.
type Parser struct {
	tokens  []token.Token
	pos     int
	section token.Directive // most recently seen top-level directive; zero value is DirCode
}

// New creates a Parser over a complete token stream (normally the output of
// lexer.Lexer.All).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// Parse consumes the whole token stream and returns the parsed items, or the
// first parse error encountered.
func (p *Parser) Parse() ([]Item, error) {
	var items []Item

	for {
		tok := p.peek()
		switch tok.Type {
		case token.EOF:
			return items, nil

		case token.OpcodeTok:
			p.advance()
			item, err := p.makeInstruction(tok)
			if err != nil {
				return items, err
			}
			items = append(items, item)

		case token.LabelDeclStart:
			p.advance()
			items = append(items, Item{Type: ItemLabelStart, Pos: tok.Pos, LabelName: tok.Str})

		case token.LabelDeclEnd:
			p.advance()
			items = append(items, Item{Type: ItemLabelEnd, Pos: tok.Pos})

		case token.DirectiveTok:
			p.advance()
			p.section = tok.Directive
			items = append(items, Item{Type: ItemDirective, Pos: tok.Pos, Directive: tok.Directive})

		case token.StrLit:
			p.advance()
			// A string literal is only meaningful inside a .string section;
			// anywhere else is the error case (spec open question 3).
			if p.section != token.DirString {
				return items, &Error{Kind: UnexpectedOperand, Pos: tok.Pos, Text: tok.Str}
			}
			items = append(items, Item{Type: ItemStringLiteral, Pos: tok.Pos, StringValue: tok.Str})

		case token.RegisterTok, token.PointerTok, token.IntLit, token.LabelUse:
			// A stray operand token at the top level: makeInstruction always
			// drains the operand run that follows an opcode, so only an
			// operand with no opcode before it (e.g. a source starting with
			// "$1", or one directly inside a label body) reaches here.
			return items, &Error{Kind: UnexpectedOperand, Pos: tok.Pos, Text: tok.Literal}

		default:
			return items, &Error{Kind: UnexpectedOperand, Pos: tok.Pos, Text: tok.Literal}
		}
	}
}

func isOperandToken(t token.Type) bool {
	switch t {
	case token.RegisterTok, token.PointerTok, token.IntLit, token.LabelUse:
		return true
	default:
		return false
	}
}

func (p *Parser) convertOperand(tok token.Token) Operand {
	switch tok.Type {
	case token.RegisterTok:
		return Operand{Kind: opcode.KindRegister, Register: tok.Register, Pos: tok.Pos}
	case token.PointerTok:
		return Operand{Kind: opcode.KindPointer, Pointer: tok.Pointer, Pos: tok.Pos}
	case token.IntLit:
		return Operand{Kind: opcode.KindNumLiteral, Num: tok.Int, Pos: tok.Pos}
	case token.LabelUse:
		return Operand{Kind: opcode.KindLabelUse, Label: tok.Str, Pos: tok.Pos}
	default:
		return Operand{}
	}
}

// makeInstruction consumes the run of operand tokens following an opcode
// and validates them against the opcode's signature (spec.md §4.2).
func (p *Parser) makeInstruction(opTok token.Token) (Item, error) {
	sig, ok := opcode.SignatureOf(opTok.Opcode)
	if !ok {
		return Item{}, &Error{Kind: InvalidOperandConversion, Pos: opTok.Pos, Text: opTok.Literal}
	}

	var operands []Operand
	for isOperandToken(p.peek().Type) {
		tok := p.advance()
		if len(operands) >= 3 {
			return Item{}, &Error{Kind: TooManyOperands, Pos: operands[0].Pos}
		}
		operands = append(operands, p.convertOperand(tok))
	}

	if len(operands) != sig.Arity {
		return Item{}, &Error{
			Kind:     IncorrectOperandNo,
			Pos:      opTok.Pos,
			Expected: sig.Arity,
			Found:    len(operands),
		}
	}

	for i, operand := range operands {
		want := sig.Slot(i + 1)
		if !want.Accepts(operand.Kind) {
			loc := opTok.Pos
			if len(operands) > 0 {
				loc = operands[0].Pos
			}
			return Item{}, &Error{Kind: InvalidOperand, Pos: loc, Text: opTok.Opcode.Mnemonic()}
		}
	}

	return Item{Type: ItemInstruction, Pos: opTok.Pos, Opcode: opTok.Opcode, Operands: operands}, nil
}
