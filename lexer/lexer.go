// Package lexer converts Verdigris assembly text into a stream of
// position-tagged tokens.
package lexer

import (
	"strconv"
	"strings"

	"github.com/cartoon-raccoon/verdigris/opcode"
	"github.com/cartoon-raccoon/verdigris/token"
)

const eof = 0

// Lexer is a single-pass, one-character-lookahead scanner over a string.
type Lexer struct {
	input  string
	pos    int  // index of ch
	readPos int // index of next char to read
	ch     byte
	line   int
	column int

	// No label-nesting state is kept: the grammar is context-free at the
	// token level, and a bare '{' that was not just consumed by a label-name
	// match is always an error regardless of nesting.
}

// New creates a Lexer over input, primed to emit the first token.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = eof
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return eof
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.column}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

// isWordDelim reports whether ch terminates a bare word / register digits.
func isWordDelim(ch byte) bool {
	if isSpace(ch) || ch == eof {
		return true
	}
	switch ch {
	case '$', '[', ']', '"', '@', '.', '{', '}', ':':
		return true
	}
	return false
}

func (l *Lexer) skipWhitespace() {
	for isSpace(l.ch) {
		l.readChar()
	}
}

// NextToken scans and returns the next token, or a lexical *Error.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	pos := l.currentPos()

	switch {
	case l.ch == eof:
		return token.Token{Type: token.EOF, Pos: pos}, nil
	case l.ch == '$':
		return l.readRegister(pos)
	case l.ch == '[':
		return l.readPointer(pos)
	case l.ch == '"':
		return l.readString(pos)
	case l.ch == '@':
		return l.readLabelUse(pos)
	case l.ch == '.':
		return l.readDirective(pos)
	case l.ch == '{':
		return token.Token{}, &Error{Kind: UnexpectedToken, Pos: pos, Text: "{"}
	case l.ch == '}':
		l.readChar()
		return token.Token{Type: token.LabelDeclEnd, Pos: pos}, nil
	default:
		return l.readWordOrLabel(pos)
	}
}

// All tokenizes the full input, stopping at EOF or the first error.
func (l *Lexer) All() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) readRegister(pos token.Position) (token.Token, error) {
	l.readChar() // consume '$'
	start := l.pos
	for !isWordDelim(l.ch) {
		l.readChar()
	}
	text := l.input[start:l.pos]
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil || n > 31 {
		return token.Token{}, &Error{Kind: InvalidRegister, Pos: pos, Text: text}
	}
	return token.Token{Type: token.RegisterTok, Pos: pos, Register: uint8(n), Literal: "$" + text}, nil
}

func (l *Lexer) readPointer(pos token.Position) (token.Token, error) {
	l.readChar() // consume '['
	start := l.pos
	for l.ch != ']' {
		if l.ch == eof {
			return token.Token{}, &Error{Kind: UnexpectedEOF, Pos: pos}
		}
		l.readChar()
	}
	text := l.input[start:l.pos]
	l.readChar() // consume ']'
	return token.Token{Type: token.PointerTok, Pos: pos, Pointer: text, Literal: "[" + text + "]"}, nil
}

func (l *Lexer) readString(pos token.Position) (token.Token, error) {
	l.readChar() // consume opening '"'
	var sb strings.Builder
	for {
		if l.ch == eof {
			return token.Token{}, &Error{Kind: UnexpectedEOF, Pos: pos}
		}
		if l.ch == '"' {
			l.readChar()
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == eof {
				return token.Token{}, &Error{Kind: UnexpectedEOF, Pos: pos}
			}
			sb.WriteByte(l.ch)
			l.readChar()
			continue
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	return token.Token{Type: token.StrLit, Pos: pos, Str: sb.String()}, nil
}

func (l *Lexer) readLabelUse(pos token.Position) (token.Token, error) {
	l.readChar() // consume '@'
	start := l.pos
	for !isWordDelim(l.ch) {
		l.readChar()
	}
	name := l.input[start:l.pos]
	if name == "" {
		return token.Token{}, &Error{Kind: UnexpectedToken, Pos: pos, Text: "@"}
	}
	return token.Token{Type: token.LabelUse, Pos: pos, Str: name, Literal: "@" + name}, nil
}

func (l *Lexer) readDirective(pos token.Position) (token.Token, error) {
	l.readChar() // consume '.'
	start := l.pos
	for !isWordDelim(l.ch) {
		l.readChar()
	}
	word := l.input[start:l.pos]
	dir, ok := token.LookupDirective(word)
	if !ok {
		return token.Token{}, &Error{Kind: InvalidDirective, Pos: pos, Text: "." + word}
	}
	return token.Token{Type: token.DirectiveTok, Pos: pos, Directive: dir, Literal: "." + word}, nil
}

// readWordOrLabel reads a bare word. If immediately followed by ':' and
// (after whitespace) '{', it is a label declaration start. Otherwise it is
// tried as a decimal integer literal, then as an opcode mnemonic.
func (l *Lexer) readWordOrLabel(pos token.Position) (token.Token, error) {
	start := l.pos
	for !isWordDelim(l.ch) {
		l.readChar()
	}
	word := l.input[start:l.pos]

	if word == "" {
		return token.Token{}, &Error{Kind: UnexpectedToken, Pos: pos, Text: string(l.ch)}
	}

	if l.ch == ':' {
		return l.finishLabelDecl(pos, word)
	}

	if n, err := strconv.ParseInt(word, 10, 32); err == nil {
		return token.Token{Type: token.IntLit, Pos: pos, Int: int32(n), Literal: word}, nil
	}

	if op, ok := opcode.Lookup(strings.ToLower(word)); ok {
		return token.Token{Type: token.OpcodeTok, Pos: pos, Opcode: op, Literal: word}, nil
	}

	return token.Token{}, &Error{Kind: UnexpectedToken, Pos: pos, Text: word}
}

func (l *Lexer) finishLabelDecl(pos token.Position, name string) (token.Token, error) {
	l.readChar() // consume ':'
	l.skipWhitespace()
	if l.ch != '{' {
		return token.Token{}, &Error{Kind: UnexpectedToken, Pos: l.currentPos(), Text: string(l.ch)}
	}
	l.readChar() // consume '{'
	return token.Token{Type: token.LabelDeclStart, Pos: pos, Str: name, Literal: name + ":"}, nil
}
