package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestSymbolTableCreate(t *testing.T) {
	st := NewSymbolTable()
	be.Equal(t, st.Len(), 0)

	typ := NewType(TypeInteger)
	id := st.Create(SymbolLocal, "x", typ, 3)
	be.Equal(t, id, SymbolID(1))
	be.Equal(t, st.Len(), 1)

	sym := st.Get(id)
	be.Equal(t, sym.Name, "x")
	be.Equal(t, sym.Kind, SymbolLocal)
	be.Equal(t, sym.Ordinal, 3)

	// The symbol owns a copy of the type.
	typ.Kind = TypeBoolean
	be.Equal(t, sym.Type.Kind, TypeInteger)
}

func TestSymbolTableGetInvalid(t *testing.T) {
	st := NewSymbolTable()
	st.Create(SymbolGlobal, "g", NewType(TypeInteger), 0)
	be.True(t, st.Get(NoSymbol) == nil)
	be.True(t, st.Get(2) == nil)
	be.True(t, st.Get(-1) == nil)
}

func TestSymbolLocation(t *testing.T) {
	tests := []struct {
		sym      Symbol
		expected string
	}{
		{Symbol{Kind: SymbolGlobal, Name: "count"}, "count(%rip)"},
		{Symbol{Kind: SymbolParam, Ordinal: 0}, "-8(%rbp)"},
		{Symbol{Kind: SymbolLocal, Ordinal: 4}, "-40(%rbp)"},
	}
	for _, test := range tests {
		be.Equal(t, test.sym.Location(), test.expected)
	}
}

func TestSymbolKindString(t *testing.T) {
	be.Equal(t, SymbolGlobal.String(), "global")
	be.Equal(t, SymbolParam.String(), "param")
	be.Equal(t, SymbolLocal.String(), "local")
	be.Equal(t, SymbolKind(7).String(), "SymbolKind(7)")
}
