package parser

import (
	"testing"

	"github.com/cartoon-raccoon/verdigris/lexer"
	"github.com/cartoon-raccoon/verdigris/opcode"
)

func parse(t *testing.T, src string) ([]Item, error) {
	t.Helper()
	toks, err := lexer.New(src).All()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	return New(toks).Parse()
}

func TestParseInstructionArity(t *testing.T) {
	items, err := parse(t, "add $1 $2 $3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Type != ItemInstruction {
		t.Fatalf("items = %+v, want one instruction", items)
	}
	if items[0].Opcode != opcode.Add {
		t.Errorf("opcode = %v, want Add", items[0].Opcode)
	}
	if len(items[0].Operands) != 3 {
		t.Fatalf("operand count = %d, want 3", len(items[0].Operands))
	}
	for i, reg := range []uint8{1, 2, 3} {
		if items[0].Operands[i].Register != reg {
			t.Errorf("operand %d register = %d, want %d", i, items[0].Operands[i].Register, reg)
		}
	}
}

func TestIncorrectOperandNo(t *testing.T) {
	_, err := parse(t, "add $1 $2")
	if err == nil {
		t.Fatal("expected an arity error")
	}
	perr := err.(*Error)
	if perr.Kind != IncorrectOperandNo {
		t.Errorf("error kind = %v, want IncorrectOperandNo", perr.Kind)
	}
	if perr.Expected != 3 || perr.Found != 2 {
		t.Errorf("expected/found = %d/%d, want 3/2", perr.Expected, perr.Found)
	}
}

func TestTooManyOperands(t *testing.T) {
	_, err := parse(t, "add $1 $2 $3 $4")
	if err == nil {
		t.Fatal("expected a too-many-operands error")
	}
	if err.(*Error).Kind != TooManyOperands {
		t.Errorf("error kind = %v, want TooManyOperands", err.(*Error).Kind)
	}
}

func TestInvalidOperandKindMismatch(t *testing.T) {
	// Operand-kind mismatch on a one-operand opcode: Jeq's sole operand
	// must be a Register, so a label use is rejected with InvalidOperand.
	_, err := parse(t, "jeq @label")
	if err == nil {
		t.Fatal("expected an invalid-operand error")
	}
	perr := err.(*Error)
	if perr.Kind != InvalidOperand {
		t.Errorf("error kind = %v, want InvalidOperand", perr.Kind)
	}
}

func TestInvalidOperandReportsFirstOperandPosition(t *testing.T) {
	// spec.md §8 "parse rejects operand-kind mismatch" scenario verbatim:
	// mov [4] @label -> InvalidOperand, located at column of "[4]".
	_, err := parse(t, "mov [4] @label")
	if err == nil {
		t.Fatal("expected an invalid-operand error")
	}
	perr := err.(*Error)
	if perr.Kind != InvalidOperand {
		t.Fatalf("error kind = %v, want InvalidOperand", perr.Kind)
	}
	if perr.Pos.Column != 5 {
		t.Errorf("error column = %d, want 5 (start of [4])", perr.Pos.Column)
	}
}

func TestHltArityZero(t *testing.T) {
	items, err := parse(t, "hlt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || len(items[0].Operands) != 0 {
		t.Fatalf("items = %+v, want one zero-operand instruction", items)
	}
}

func TestLabelAndDirectiveItems(t *testing.T) {
	items, err := parse(t, ".data label: { } .code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantTypes := []ItemType{ItemDirective, ItemLabelStart, ItemLabelEnd, ItemDirective}
	if len(items) != len(wantTypes) {
		t.Fatalf("items = %+v, want %d items", items, len(wantTypes))
	}
	for i, want := range wantTypes {
		if items[i].Type != want {
			t.Errorf("item %d type = %v, want %v", i, items[i].Type, want)
		}
	}
}

func TestStringLiteralOutsideStringSectionIsError(t *testing.T) {
	// spec.md §9 open question 3: non-string context is the error case.
	_, err := parse(t, `.data label: { "oops" }`)
	if err == nil {
		t.Fatal("expected an error for a string literal outside .string")
	}
	if err.(*Error).Kind != UnexpectedOperand {
		t.Errorf("error kind = %v, want UnexpectedOperand", err.(*Error).Kind)
	}
}

func TestStringLiteralInsideStringSection(t *testing.T) {
	items, err := parse(t, `.string label: { "ok" }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var found bool
	for _, item := range items {
		if item.Type == ItemStringLiteral {
			found = true
			if item.StringValue != "ok" {
				t.Errorf("string value = %q, want %q", item.StringValue, "ok")
			}
		}
	}
	if !found {
		t.Error("no string literal item produced")
	}
}

func TestMovAcceptsImmediatePointerOrRegisterSource(t *testing.T) {
	for _, src := range []string{"mov $1 500", "mov $1 [4]", "mov $1 $2"} {
		if _, err := parse(t, src); err != nil {
			t.Errorf("parse(%q) unexpected error: %v", src, err)
		}
	}
}
