package token

import "testing"

func TestPositionString(t *testing.T) {
	p := Position{Line: 3, Column: 7}
	if got := p.String(); got != "3:7" {
		t.Errorf("Position.String() = %q, want %q", got, "3:7")
	}
}

func TestLookupDirective(t *testing.T) {
	tests := map[string]Directive{
		"code":   DirCode,
		"data":   DirData,
		"string": DirString,
		"global": DirGlobal,
	}
	for word, want := range tests {
		got, ok := LookupDirective(word)
		if !ok || got != want {
			t.Errorf("LookupDirective(%q) = (%v, %v), want (%v, true)", word, got, ok, want)
		}
	}
	if _, ok := LookupDirective("bogus"); ok {
		t.Error("LookupDirective(\"bogus\") should not be found")
	}
}

func TestTokenStringVariants(t *testing.T) {
	tests := []struct {
		name string
		tok  Token
		want string
	}{
		{"int", Token{Type: IntLit, Int: 42, Pos: Position{1, 1}}, "INT(42)@1:1"},
		{"register", Token{Type: RegisterTok, Register: 5, Pos: Position{1, 1}}, "REGISTER($5)@1:1"},
		{"string", Token{Type: StrLit, Str: "hi", Pos: Position{1, 1}}, `STRING("hi")@1:1`},
		{"eof", Token{Type: EOF, Pos: Position{2, 1}}, "EOF@2:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
