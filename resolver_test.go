package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := ParseProgram(src)
	be.Err(t, err, nil)
	return prog
}

func resolve(t *testing.T, src string) (*Program, *SymbolTable, *Diagnostics) {
	t.Helper()
	prog := mustParse(t, src)
	symbols := NewSymbolTable()
	diag := NewDiagnostics(nil)
	NewResolver(symbols, diag).ResolveProgram(prog)
	return prog, symbols, diag
}

func TestResolverOrdinals(t *testing.T) {
	prog, symbols, diag := resolve(t, `(program
		(func (ident "f") (function integer (param "a" integer) (param "v" (array integer)))
			(block
				(var (ident "x") integer (integer 1))
				(var (ident "buf") (array (integer 3) integer))
				(return (ident "x")))))`)
	be.Equal(t, diag.Count(), 0)

	f := prog.Decls[0]
	be.Equal(t, f.FrameSlots, 6)

	type entry struct {
		name    string
		kind    SymbolKind
		ordinal int
	}
	var got []entry
	for _, sym := range symbols.All() {
		got = append(got, entry{sym.Name, sym.Kind, sym.Ordinal})
	}
	be.Equal(t, got, []entry{
		{"f", SymbolGlobal, 0},
		{"a", SymbolParam, 0},
		{"v", SymbolParam, 1},
		{"x", SymbolLocal, 2},
		{"buf", SymbolLocal, 3},
	})

	// Parameters are linked to their symbols.
	be.Equal(t, f.Type.Params[0].Symbol, SymbolID(2))
	be.Equal(t, f.Type.Params[1].Symbol, SymbolID(3))
}

func TestResolverOrdinalsResetPerFunction(t *testing.T) {
	prog, _, _ := resolve(t, `(program
		(func (ident "f") (function void) (block (var (ident "x") integer)))
		(func (ident "g") (function void (param "p" integer)) (block)))`)
	be.Equal(t, prog.Decls[0].FrameSlots, 1)
	be.Equal(t, prog.Decls[1].FrameSlots, 1)
}

func TestResolverNestedBlocksKeepCounting(t *testing.T) {
	prog, symbols, _ := resolve(t, `(program
		(func (ident "f") (function void)
			(block
				(var (ident "a") integer)
				(if (boolean true) (var (ident "b") integer) (var (ident "c") integer))
				(block (var (ident "d") integer)))))`)
	be.Equal(t, prog.Decls[0].FrameSlots, 4)
	be.Equal(t, symbols.Get(5).Name, "d")
	be.Equal(t, symbols.Get(5).Ordinal, 3)
}

func TestResolverLinksNames(t *testing.T) {
	prog, symbols, diag := resolve(t, `(program
		(var (ident "g") integer (integer 1))
		(func (ident "f") (function integer)
			(block (return (ident "g")))))`)
	be.Equal(t, diag.Count(), 0)
	ret := prog.Decls[1].Body.Stmts[0].Expr
	be.Equal(t, symbols.Get(ret.Symbol).Name, "g")
	be.Equal(t, symbols.Get(ret.Symbol).Kind, SymbolGlobal)
}

func TestResolverUndefined(t *testing.T) {
	prog, _, diag := resolve(t, `(program
		(func (ident "f") (function void)
			(block (expr (call (ident "missing") (ident "y"))))))`)
	be.Equal(t, diag.Messages(), []string{
		"resolve error: missing is not defined",
		"resolve error: y is not defined",
	})
	call := prog.Decls[0].Body.Stmts[0].Expr
	be.Equal(t, call.Left.Symbol, NoSymbol)
}

func TestResolverRedeclaration(t *testing.T) {
	prog, symbols, diag := resolve(t, `(program
		(func (ident "f") (function void)
			(block
				(var (ident "x") integer)
				(var (ident "x") boolean)
				(expr (ident "x")))))`)
	be.Equal(t, diag.Messages(), []string{"resolve error: x is already declared in this scope"})

	// The second declaration still takes a slot, but the name keeps
	// referring to the first.
	f := prog.Decls[0]
	be.Equal(t, f.FrameSlots, 2)
	use := f.Body.Stmts[2].Expr
	be.Equal(t, symbols.Get(use.Symbol).Type.Kind, TypeInteger)
	be.True(t, f.Body.Stmts[1].Decl.Symbol != use.Symbol)
}

func TestResolverShadowingIsNotRedeclaration(t *testing.T) {
	_, _, diag := resolve(t, `(program
		(var (ident "x") integer)
		(func (ident "f") (function void (param "x" boolean))
			(block (if (ident "x") (var (ident "x") char)))))`)
	be.Equal(t, diag.Count(), 0)
}

func TestResolverPrototypes(t *testing.T) {
	t.Run("matching prototype is reused", func(t *testing.T) {
		prog, symbols, diag := resolve(t, `(program
			(var (ident "f") (function void (param "a" integer)))
			(func (ident "g") (function void) (block (expr (call (ident "f") (integer 1)))))
			(func (ident "f") (function void (param "a" integer)) (block)))`)
		be.Equal(t, diag.Count(), 0)
		be.Equal(t, prog.Decls[0].Symbol, prog.Decls[2].Symbol)
		be.Equal(t, symbols.Get(prog.Decls[0].Symbol).Name, "f")
	})

	t.Run("mismatched prototype", func(t *testing.T) {
		prog, _, diag := resolve(t, `(program
			(var (ident "f") (function void (param "a" integer)))
			(func (ident "f") (function integer (param "a" integer)) (block)))`)
		be.Equal(t, diag.Messages(), []string{
			"type error: function definition does not match its prototype (f was declared as function void (a: integer))",
		})
		be.True(t, prog.Decls[0].Symbol != prog.Decls[1].Symbol)
	})

	t.Run("prototype after definition", func(t *testing.T) {
		_, _, diag := resolve(t, `(program
			(func (ident "f") (function void) (block))
			(var (ident "f") (function void)))`)
		be.Equal(t, diag.Messages(), []string{"resolve error: f is already declared in this scope"})
	})

	t.Run("recursion", func(t *testing.T) {
		prog, _, diag := resolve(t, `(program
			(func (ident "f") (function void) (block (expr (call (ident "f"))))))`)
		be.Equal(t, diag.Count(), 0)
		call := prog.Decls[0].Body.Stmts[0].Expr
		be.Equal(t, call.Left.Symbol, prog.Decls[0].Symbol)
	})
}

func TestResolverAutoInference(t *testing.T) {
	prog, symbols, diag := resolve(t, `(program
		(var (ident "a") (array (integer 2) integer) (init-list (integer 1) (integer 2)))
		(func (ident "f") (function void)
			(block (var (ident "y") auto (ident "a")))))`)
	be.Equal(t, diag.Count(), 0)

	y := prog.Decls[1].Body.Stmts[0].Decl
	be.True(t, y.DeclaredAuto)
	be.Equal(t, y.Type.String(), "array [2] integer")
	be.Equal(t, symbols.Get(y.Symbol).Type.String(), "array [2] integer")
	// An inferred array takes as many slots as it has elements.
	be.Equal(t, prog.Decls[1].FrameSlots, 2)
}

func TestResolverSharedGlobalScope(t *testing.T) {
	symbols := NewSymbolTable()
	r := NewResolver(symbols, NewDiagnostics(nil))
	r.ResolveProgram(mustParse(t, `(program (var (ident "g") integer (integer 1)))`))

	diag := NewDiagnostics(nil)
	r.Diag = diag
	prog := mustParse(t, `(program (func (ident "f") (function integer) (block (return (ident "g")))))`)
	r.ResolveProgram(prog)
	be.Equal(t, diag.Count(), 0)
	be.Equal(t, r.Lookup("g").Name, "g")
	be.True(t, r.Lookup("nothing") == nil)
}
