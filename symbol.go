package main

import "fmt"

type SymbolKind int

const (
	SymbolGlobal SymbolKind = iota
	SymbolParam
	SymbolLocal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolGlobal:
		return "global"
	case SymbolParam:
		return "param"
	case SymbolLocal:
		return "local"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

// SymbolID indexes a Symbol in a SymbolTable. The zero value means the name
// was never resolved.
type SymbolID int

const NoSymbol SymbolID = 0

// Symbol is a declared name bound in some scope.
type Symbol struct {
	ID   SymbolID
	Kind SymbolKind
	Type *Type
	// Ordinal is the first stack slot of a param or local, counted from the
	// start of the enclosing function. Globals always have ordinal 0.
	Ordinal int
	Name    string
}

// Location returns the assembly operand addressing a scalar symbol.
func (s *Symbol) Location() string {
	if s.Kind == SymbolGlobal {
		return s.Name + "(%rip)"
	}
	return fmt.Sprintf("-%d(%%rbp)", (s.Ordinal+1)*8)
}

// SymbolTable owns every symbol created during a compilation. Declarations
// and expressions refer to symbols by id only.
type SymbolTable struct {
	symbols []*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Create adds a symbol holding its own copy of typ and returns its id.
func (st *SymbolTable) Create(kind SymbolKind, name string, typ *Type, ordinal int) SymbolID {
	id := SymbolID(len(st.symbols) + 1)
	st.symbols = append(st.symbols, &Symbol{
		ID:      id,
		Kind:    kind,
		Type:    typ.Copy(),
		Ordinal: ordinal,
		Name:    name,
	})
	return id
}

// Get returns the symbol for id, or nil for NoSymbol or an unknown id.
func (st *SymbolTable) Get(id SymbolID) *Symbol {
	if id <= NoSymbol || int(id) > len(st.symbols) {
		return nil
	}
	return st.symbols[id-1]
}

// All returns the symbols in creation order.
func (st *SymbolTable) All() []*Symbol {
	return st.symbols
}

func (st *SymbolTable) Len() int {
	return len(st.symbols)
}
