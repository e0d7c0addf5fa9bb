package opcode

import "testing"

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for op := range table {
		b, ok := Encode(op)
		if !ok {
			t.Fatalf("Encode(%v) reported not-ok for a table entry", op)
		}
		if Decode(b) != op {
			t.Errorf("Decode(Encode(%v)) = %v, want %v", op, Decode(b), op)
		}
	}
}

func TestDecodeIllegalByte(t *testing.T) {
	// 0xf7 has no table entry (spec.md §8 "illegal opcode" scenario).
	if got := Decode(0xf7); got != Igl {
		t.Errorf("Decode(0xf7) = %v, want Igl", got)
	}
}

func TestLookupMnemonic(t *testing.T) {
	tests := []struct {
		mnemonic string
		want     Opcode
	}{
		{"hlt", Hlt},
		{"mov", Mov},
		{"add", Add},
		{"jeq", Jeq},
		{"aloc", Aloc},
	}
	for _, tt := range tests {
		op, ok := Lookup(tt.mnemonic)
		if !ok {
			t.Fatalf("Lookup(%q) not found", tt.mnemonic)
		}
		if op != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.mnemonic, op, tt.want)
		}
	}

	if _, ok := Lookup("nosuchop"); ok {
		t.Error("Lookup(\"nosuchop\") should not be found")
	}
}

func TestCanonicalByteValues(t *testing.T) {
	// spec.md §6's canonical byte assignment table, checked verbatim.
	tests := []struct {
		op   Opcode
		byte byte
	}{
		{Hlt, 0x00}, {Mov, 0x01}, {Jmp, 0x02}, {JmpF, 0x03}, {JmpB, 0x04},
		{Cmp, 0x05}, {Lt, 0x06}, {Gt, 0x07}, {Le, 0x08}, {Ge, 0x09},
		{Jeq, 0x0a}, {Jne, 0x0b}, {Aloc, 0x0c}, {Dalc, 0x0d},
		{Push, 0x0e}, {Pop, 0x0f}, {Call, 0x10}, {Ret, 0x11},
		{Prt, 0x12}, {Open, 0x13}, {Clse, 0x14}, {Read, 0x15}, {Wrt, 0x16},
		{Inc, 0x20}, {Dec, 0x21}, {Add, 0x22}, {Sub, 0x23}, {Mul, 0x24}, {Div, 0x25},
		{And, 0x26}, {Not, 0x27}, {Or, 0x28}, {Xor, 0x29}, {Bsl, 0x2a}, {Bsr, 0x2b},
	}
	for _, tt := range tests {
		b, ok := Encode(tt.op)
		if !ok || b != tt.byte {
			t.Errorf("Encode(%v) = (0x%02x, %v), want (0x%02x, true)", tt.op, b, ok, tt.byte)
		}
	}
}

func TestReserved(t *testing.T) {
	for _, op := range []Opcode{Push, Pop, Call, Ret, Prt, Open, Clse, Read, Wrt, Inc, Dec, And, Or, Not, Xor, Bsl, Bsr} {
		if !Reserved(op) {
			t.Errorf("Reserved(%v) = false, want true", op)
		}
	}
	for _, op := range []Opcode{Hlt, Mov, Jmp, Add, Aloc} {
		if Reserved(op) {
			t.Errorf("Reserved(%v) = true, want false", op)
		}
	}
}

func TestSignatureOfUnknownOpcode(t *testing.T) {
	if _, ok := SignatureOf(Igl); ok {
		t.Error("SignatureOf(Igl) should report not-ok")
	}
}
