package assembler

import "github.com/cartoon-raccoon/verdigris/token"

// SymbolKind distinguishes a code label from a data label (spec.md §3
// "Symbol table").
type SymbolKind int

const (
	SymbolCode SymbolKind = iota
	SymbolData
)

// Symbol is one entry in the assembler's symbol table.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Offset  uint32
	Payload []byte // set for data/string labels
	Global  bool
	Pos     token.Position
}

// SymbolTable maps label names to their resolved address and payload.
// Exclusively owned by the assembler during lowering and discarded once
// bytecode is produced (spec.md §5).
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define records a new label. Redefining an existing name is fatal
// (spec.md §3, §4.3).
func (st *SymbolTable) Define(name string, kind SymbolKind, offset uint32, pos token.Position) error {
	if _, exists := st.symbols[name]; exists {
		return &Error{Kind: RedefinedLabel, Name: name, Pos: pos}
	}
	st.symbols[name] = &Symbol{Name: name, Kind: kind, Offset: offset, Pos: pos}
	return nil
}

// SetPayload attaches data bytes to an already-defined label.
func (st *SymbolTable) SetPayload(name string, payload []byte) {
	if sym, ok := st.symbols[name]; ok {
		sym.Payload = payload
	}
}

// SetGlobal marks a label as externally visible (reserved for future linking;
// spec.md §4.3 ".global marks the following label as externally visible").
func (st *SymbolTable) SetGlobal(name string) {
	if sym, ok := st.symbols[name]; ok {
		sym.Global = true
	}
}

// Lookup resolves a label by name.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}
