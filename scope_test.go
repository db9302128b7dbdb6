package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestScopeStackShadowing(t *testing.T) {
	s := NewScopeStack()
	be.Equal(t, s.Level(), 0)

	s.Enter()
	s.Bind("x", 1)
	be.Equal(t, s.Lookup("x"), SymbolID(1))

	s.Enter()
	be.Equal(t, s.Level(), 2)
	be.Equal(t, s.Lookup("x"), SymbolID(1))
	be.Equal(t, s.LookupCurrent("x"), NoSymbol)

	s.Bind("x", 2)
	be.Equal(t, s.Lookup("x"), SymbolID(2))
	be.Equal(t, s.LookupCurrent("x"), SymbolID(2))

	s.Exit()
	be.Equal(t, s.Lookup("x"), SymbolID(1))
}

func TestScopeStackMissing(t *testing.T) {
	s := NewScopeStack()
	be.Equal(t, s.Lookup("x"), NoSymbol)
	be.Equal(t, s.LookupCurrent("x"), NoSymbol)

	// Exiting an empty stack is harmless.
	s.Exit()
	be.Equal(t, s.Level(), 0)

	// Binding with no scope opens one.
	s.Bind("y", 3)
	be.Equal(t, s.Level(), 1)
	be.Equal(t, s.Lookup("y"), SymbolID(3))
}
