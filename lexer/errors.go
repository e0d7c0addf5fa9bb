package lexer

import (
	"fmt"

	"github.com/cartoon-raccoon/verdigris/token"
)

// Kind categorizes a lexical error (spec.md §7 "Lex" kinds).
type Kind int

const (
	UnexpectedToken Kind = iota
	UnexpectedEOF
	InvalidRegister
	CouldNotParse
	// InvalidDirective is raised here (rather than by the parser) because
	// spec.md §4.1 assigns the `.word` -> {code,data,string,global} mapping
	// to the lexer itself; an unrecognised directive word is a lexical
	// failure, not a grammatical one.
	InvalidDirective
)

// Error is a lexical error tagged with the position it was detected at.
type Error struct {
	Kind Kind
	Pos  token.Position
	Text string
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedToken:
		return fmt.Sprintf("%s: unexpected token %q", e.Pos, e.Text)
	case UnexpectedEOF:
		return fmt.Sprintf("%s: unexpected end of input", e.Pos)
	case InvalidRegister:
		return fmt.Sprintf("%s: invalid register %q (must be 0-31)", e.Pos, e.Text)
	case CouldNotParse:
		return fmt.Sprintf("%s: could not parse %q", e.Pos, e.Text)
	case InvalidDirective:
		return fmt.Sprintf("%s: invalid directive %q", e.Pos, e.Text)
	default:
		return fmt.Sprintf("%s: lex error", e.Pos)
	}
}
