package assembler_test

import (
	"testing"

	"github.com/cartoon-raccoon/verdigris/assembler"
	"github.com/cartoon-raccoon/verdigris/lexer"
	"github.com/cartoon-raccoon/verdigris/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assembleSrc(t *testing.T, src string) ([]byte, *assembler.SymbolTable) {
	t.Helper()
	toks, err := lexer.New(src).All()
	require.NoError(t, err)
	items, err := parser.New(toks).Parse()
	require.NoError(t, err)
	program, symtab, err := assembler.Assemble(items)
	require.NoError(t, err)
	return program, symtab
}

func TestMovImmediate(t *testing.T) {
	// spec.md §8 "mov immediate" scenario: mov $2 500 then hlt.
	program, _ := assembleSrc(t, "mov $2 500 hlt")
	want := []byte{0x01, 0x02, 0x00, 0xF4, 0x01, 0x00, 0x00}
	assert.Equal(t, append(want, 0x00), program)
}

func TestAddThreeRegisters(t *testing.T) {
	program, _ := assembleSrc(t, "mov $1 250 mov $2 250 add $1 $2 $3 hlt")
	// mov(3+4=7) * 2 + add(4) + hlt(1) = 19
	assert.Len(t, program, 19)
	assert.Equal(t, byte(0x22), program[14], "add opcode byte")
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, program[15:18])
	assert.Equal(t, byte(0x00), program[18], "hlt opcode byte")
}

func TestAlocRegisterMode(t *testing.T) {
	program, _ := assembleSrc(t, "mov $2 10 aloc $2 hlt")
	// mov: 0x01 02 00 0a000000 (7 bytes); aloc: 0x0c 02 02 (mode=2 register, reg=2)
	want := []byte{0x01, 0x02, 0x00, 0x0a, 0x00, 0x00, 0x00, 0x0c, 0x02, 0x02, 0x00}
	assert.Equal(t, want, program)
}

func TestLabelOffsetsAssignedBeforeEmission(t *testing.T) {
	program, symtab := assembleSrc(t, "label: { mov $3 500 } mov $5 [label]")
	sym, ok := symtab.Lookup("label")
	require.True(t, ok)
	assert.Equal(t, uint32(0), sym.Offset)

	// mov $5 [label] resolves to a pointer (mode 1) carrying label's offset.
	tailStart := len(program) - 7
	assert.Equal(t, byte(0x01), program[tailStart], "mov opcode")
	assert.Equal(t, byte(0x05), program[tailStart+1], "dest register")
	assert.Equal(t, byte(0x01), program[tailStart+2], "pointer mode")
}

func TestPointerExpressionWithOffset(t *testing.T) {
	program, symtab := assembleSrc(t, "label: { mov $1 1 } mov $5 [label + 4]")
	sym, ok := symtab.Lookup("label")
	require.True(t, ok)
	assert.Equal(t, uint32(0), sym.Offset)

	// First instruction is 7 bytes (mov reg, immediate); the second
	// instruction's pointer value starts 3 bytes into it.
	valueStart := 7 + 3
	value := uint32(program[valueStart]) | uint32(program[valueStart+1])<<8 |
		uint32(program[valueStart+2])<<16 | uint32(program[valueStart+3])<<24
	assert.Equal(t, uint32(4), value, "label+4 should resolve to the label's offset plus 4")
}

func TestRedefinedLabelIsFatal(t *testing.T) {
	toks, err := lexer.New("a: { hlt } a: { hlt }").All()
	require.NoError(t, err)
	items, err := parser.New(toks).Parse()
	require.NoError(t, err)

	_, _, err = assembler.Assemble(items)
	require.Error(t, err)
	assert.Equal(t, assembler.RedefinedLabel, err.(*assembler.Error).Kind)
}

func TestUndefinedLabelIsFatal(t *testing.T) {
	toks, err := lexer.New("mov $1 [nosuchlabel]").All()
	require.NoError(t, err)
	items, err := parser.New(toks).Parse()
	require.NoError(t, err)

	_, _, err = assembler.Assemble(items)
	require.Error(t, err)
	assert.Equal(t, assembler.UndefinedLabel, err.(*assembler.Error).Kind)
}

func TestStringSectionPayloadIsAppended(t *testing.T) {
	program, symtab := assembleSrc(t, `.string greeting: { "hi" } .code hlt`)
	sym, ok := symtab.Lookup("greeting")
	require.True(t, ok)
	assert.Equal(t, []byte("hi"), sym.Payload)
	assert.Equal(t, []byte("hi"), program[:2])
	assert.Equal(t, byte(0x00), program[2], "hlt opcode follows the string bytes")
}

func TestGlobalLabelMarked(t *testing.T) {
	_, symtab := assembleSrc(t, ".global label: { hlt }")
	sym, ok := symtab.Lookup("label")
	require.True(t, ok)
	assert.True(t, sym.Global)
}
