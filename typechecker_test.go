package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func typecheck(t *testing.T, src string) (*Program, *SymbolTable, *Diagnostics) {
	t.Helper()
	prog, symbols, diag := resolve(t, src)
	NewTypeChecker(symbols, diag).CheckProgram(prog)
	return prog, symbols, diag
}

func TestTypeCheckerAutoInference(t *testing.T) {
	prog, symbols, diag := typecheck(t, `(program
		(func (ident "f") (function void)
			(block
				(var (ident "y") auto (binary "+" (integer 3) (integer 4)))
				(print (ident "y")))))`)
	be.Equal(t, diag.Count(), 0)

	y := prog.Decls[0].Body.Stmts[0].Decl
	be.Equal(t, y.Type.Kind, TypeInteger)
	be.Equal(t, symbols.Get(y.Symbol).Type.Kind, TypeInteger)

	use := prog.Decls[0].Body.Stmts[1].Exprs[0]
	be.Equal(t, use.Type.Kind, TypeInteger)
}

func TestTypeCheckerRecordsExpressionTypes(t *testing.T) {
	prog, _, diag := typecheck(t, `(program
		(var (ident "s") string (string "hey"))
		(func (ident "f") (function boolean)
			(block (return (binary "==" (idx (ident "s") (integer 0)) (char "h"))))))`)
	be.Equal(t, diag.Count(), 0)

	eq := prog.Decls[1].Body.Stmts[0].Expr
	be.Equal(t, eq.Type.Kind, TypeBoolean)
	be.Equal(t, eq.Left.Type.Kind, TypeChar)
	be.Equal(t, eq.Left.Left.Type.Kind, TypeString)
	be.Equal(t, eq.Left.Right.Type.Kind, TypeInteger)
}

func TestTypeCheckerCallType(t *testing.T) {
	prog, _, diag := typecheck(t, `(program
		(var (ident "len") (function integer (param "s" string)))
		(func (ident "f") (function integer)
			(block (return (call (ident "len") (string "abc"))))))`)
	be.Equal(t, diag.Count(), 0)
	call := prog.Decls[1].Body.Stmts[0].Expr
	be.Equal(t, call.Type.Kind, TypeInteger)
	be.Equal(t, call.Left.Type.String(), "function integer (s: string)")
}

func TestTypeCheckerInitList(t *testing.T) {
	t.Run("homogeneous", func(t *testing.T) {
		prog, _, diag := typecheck(t, `(program
			(var (ident "a") (array (integer 2) char) (init-list (char "x") (char "y"))))`)
		be.Equal(t, diag.Count(), 0)
		be.Equal(t, prog.Decls[0].Value.Type.String(), "array [2] char")
	})

	t.Run("mixed", func(t *testing.T) {
		_, _, diag := typecheck(t, `(program
			(var (ident "a") (array (integer 2) integer) (init-list (integer 1) (boolean false))))`)
		be.Equal(t, diag.Messages(), []string{
			"type error: initializer list elements must all have type integer ({1, false})",
		})
	})

	t.Run("empty", func(t *testing.T) {
		prog, _, diag := typecheck(t, `(program
			(var (ident "a") (array (integer 0) integer) (init-list)))`)
		be.Equal(t, diag.Count(), 0)
		be.Equal(t, prog.Decls[0].Value.Type.String(), "array [0] integer")
	})

	t.Run("assignment", func(t *testing.T) {
		_, _, diag := typecheck(t, `(program
			(var (ident "a") (array (integer 2) integer))
			(func (ident "main") (function void)
				(block (expr (binary "=" (ident "a") (init-list (integer 1) (integer 2)))))))`)
		be.Equal(t, diag.Count(), 0)
	})

	t.Run("elsewhere", func(t *testing.T) {
		_, _, diag := typecheck(t, `(program
			(var (ident "f") (function integer (param "v" (array integer))))
			(func (ident "main") (function integer)
				(block (return (call (ident "f") (init-list (integer 1)))))))`)
		be.Equal(t, diag.Messages(), []string{
			"type error: initializer lists can only initialize or assign an array ({1})",
		})
	})
}

func TestTypeCheckerUnknownSuppressesCascades(t *testing.T) {
	_, _, diag := typecheck(t, `(program
		(func (ident "f") (function integer)
			(block
				(if (ident "nope") (return (ident "nope")))
				(return (binary "==" (ident "nope") (integer 1))))))`)
	be.Equal(t, diag.Messages(), []string{
		"resolve error: nope is not defined",
		"resolve error: nope is not defined",
		"resolve error: nope is not defined",
		"type error: mismatched return type in function f. Expected integer, actual boolean (return nope == 1;)",
	})
}

func TestTypeCheckerEqualityOnAggregates(t *testing.T) {
	_, _, diag := typecheck(t, `(program
		(var (ident "a") (array (integer 1) integer))
		(var (ident "g") (function void))
		(func (ident "f") (function void)
			(block
				(expr (binary "==" (ident "a") (ident "a")))
				(expr (binary "!=" (ident "g") (ident "g"))))))`)
	be.Equal(t, diag.Messages(), []string{
		"type error: equality operators cannot compare values of type array [1] integer (a == a)",
		"type error: equality operators cannot compare values of type function void () (g != g)",
	})
}

func TestTypeCheckerArrayArguments(t *testing.T) {
	tests := []struct {
		name  string
		param string
		arg   string
		ok    bool
	}{
		{"size-less accepts any length", `(array integer)`, `(array (integer 5) integer)`, true},
		{"sized must match", `(array (integer 4) integer)`, `(array (integer 5) integer)`, false},
		{"element type must match", `(array integer)`, `(array (integer 5) boolean)`, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, diag := typecheck(t, `(program
				(var (ident "take") (function void (param "v" `+test.param+`)))
				(var (ident "data") `+test.arg+`)
				(func (ident "f") (function void) (block (expr (call (ident "take") (ident "data"))))))`)
			be.Equal(t, diag.Count() == 0, test.ok)
		})
	}
}

func TestTypeCheckerArraySize(t *testing.T) {
	_, _, diag := typecheck(t, `(program
		(var (ident "n") integer (integer 2))
		(var (ident "a") (array (ident "n") integer)))`)
	be.Equal(t, diag.Messages(), []string{
		"type error: array size must be a nonnegative integer literal (a: array [n] integer;)",
	})
}

func TestTypeCheckerReturnVoid(t *testing.T) {
	_, _, diag := typecheck(t, `(program
		(func (ident "f") (function integer) (block (return)))
		(func (ident "g") (function void) (block (return (integer 1)))))`)
	be.Equal(t, diag.Messages(), []string{
		"type error: mismatched return type in function f. Expected integer, actual void (return ;)",
		"type error: mismatched return type in function g. Expected void, actual integer (return 1;)",
	})
}

func TestQuietTypeChecker(t *testing.T) {
	symbols := NewSymbolTable()
	e := NewBinary(ExprAdd, NewBooleanLiteral(true), NewIntegerLiteral(1))
	typ := NewTypeChecker(symbols, nil).CheckExpr(e)
	be.Equal(t, typ.Kind, TypeInteger)
	be.True(t, e.Left.Type.Is(TypeBoolean))
}
