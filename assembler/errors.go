package assembler

import (
	"fmt"

	"github.com/cartoon-raccoon/verdigris/token"
)

// Kind categorizes an assembly error (spec.md §7 "Assemble" kinds).
type Kind int

const (
	UndefinedLabel Kind = iota
	RedefinedLabel
	UnresolvedPointer
)

// Error is an assembly-time error. Most carry the offending name rather than
// a source position, since by phase B the parser's token positions have
// already been consulted once; Pos is filled in when available.
type Error struct {
	Kind Kind
	Name string
	Pos  token.Position
}

func (e *Error) Error() string {
	switch e.Kind {
	case UndefinedLabel:
		return fmt.Sprintf("undefined label %q", e.Name)
	case RedefinedLabel:
		return fmt.Sprintf("%s: label %q redefined", e.Pos, e.Name)
	case UnresolvedPointer:
		return fmt.Sprintf("unresolved pointer expression %q", e.Name)
	default:
		return "assemble error"
	}
}
