package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pkg/errors"
)

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Log = nil
	return opts
}

func TestCompileContinuesAfterDiagnostics(t *testing.T) {
	var diagOut bytes.Buffer
	prog := mustParse(t, `(program (var (ident "x") integer (ident "y")))`)
	res, err := Compile(prog, quietOptions(), &diagOut)
	be.Err(t, err, nil)
	be.Equal(t, res.Diagnostics.Messages(), []string{
		"resolve error: y is not defined",
		"type error: global x must be initialized with a constant (y)",
	})
	be.Equal(t, diagOut.String(), "resolve error: y is not defined\ntype error: global x must be initialized with a constant (y)\n")
	be.Equal(t, res.Assembly, ".data\nx: .quad 0\n")
}

func TestCompileFailFast(t *testing.T) {
	opts := quietOptions()
	opts.FailFast = true

	t.Run("after resolution", func(t *testing.T) {
		prog := mustParse(t, `(program (var (ident "x") integer (ident "y")))`)
		res, err := Compile(prog, opts, nil)
		be.True(t, errors.Cause(err) == ErrDiagnostics)
		be.Err(t, err, "resolution reported 1 diagnostics")
		be.Equal(t, res.Diagnostics.Count(), 1)
		be.Equal(t, res.Assembly, "")
	})

	t.Run("after type checking", func(t *testing.T) {
		prog := mustParse(t, `(program (var (ident "x") integer (boolean true)))`)
		res, err := Compile(prog, opts, nil)
		be.True(t, errors.Cause(err) == ErrDiagnostics)
		be.Err(t, err, "type checking reported 1 diagnostics")
		be.Equal(t, res.Assembly, "")
	})

	t.Run("clean program", func(t *testing.T) {
		prog := mustParse(t, `(program (var (ident "x") integer (integer 1)))`)
		res, err := Compile(prog, opts, nil)
		be.Err(t, err, nil)
		be.Equal(t, res.Assembly, ".data\nx: .quad 1\n")
	})
}

func TestCheckDoesNotGenerate(t *testing.T) {
	prog := mustParse(t, `(program (var (ident "x") auto (integer 1)))`)
	res, err := Check(prog, quietOptions(), nil)
	be.Err(t, err, nil)
	be.Equal(t, res.Assembly, "")
	be.Equal(t, res.Symbols.Len(), 1)
	be.Equal(t, res.Program.Decls[0].Type.Kind, TypeInteger)
}

func TestCompileMisplacedInitListKeepsAssembly(t *testing.T) {
	prog := mustParse(t, `(program
		(func (ident "ok") (function integer) (block (return (integer 1))))
		(func (ident "bad") (function void) (block (print (init-list (integer 1) (integer 2))))))`)
	res, err := Compile(prog, quietOptions(), nil)
	be.Err(t, err, nil)
	be.Equal(t, res.Diagnostics.Messages(), []string{
		"type error: initializer lists can only initialize or assign an array ({1, 2})",
		"type error: print statements must be a list of atomic types ({1, 2})",
	})
	be.True(t, strings.Contains(res.Assembly, "\nok:\n"))
	be.True(t, strings.Contains(res.Assembly, "\nbad_epilogue:\n"))
}

func TestCompileCallInsideExpression(t *testing.T) {
	prog := mustParse(t, `(program
		(var (ident "g") (function integer
			(param "a" integer) (param "b" integer) (param "c" integer) (param "d" integer)
			(param "e" integer) (param "f" integer) (param "g" integer)))
		(func (ident "main") (function integer (param "x" integer))
			(block (return (binary "+" (ident "x") (call (ident "g")
				(integer 1) (integer 2) (integer 3) (integer 4)
				(integer 5) (integer 6) (integer 7)))))))`)
	res, err := Compile(prog, quietOptions(), nil)
	be.Err(t, err, nil)
	be.Equal(t, res.Diagnostics.Count(), 0)
	be.True(t, strings.Contains(res.Assembly, "CALL g\n"))
}

func TestCompileCodeGenerationFailure(t *testing.T) {
	prog := mustParse(t, `(program
		(func (ident "f") (function integer)
			(block (return
				(binary "+" (integer 1) (binary "+" (integer 2) (binary "+" (integer 3) (binary "+" (integer 4)
				(binary "+" (integer 5) (binary "+" (integer 6) (binary "+" (integer 7) (integer 8))))))))))))`)
	_, err := Compile(prog, quietOptions(), nil)
	be.True(t, errors.Cause(err) == ErrNoFreeRegister)
	be.Err(t, err, "code generation: function f")
}

func TestSessionSharesGlobals(t *testing.T) {
	s := NewSession(quietOptions(), nil)

	res, err := s.Compile(mustParse(t, `(program (var (ident "greeting") string (string "hi")))`))
	be.Err(t, err, nil)
	be.Equal(t, res.Diagnostics.Count(), 0)

	res, err = s.Compile(mustParse(t, `(program
		(func (ident "main") (function void) (block (print (ident "greeting") (string "!")))))`))
	be.Err(t, err, nil)
	be.Equal(t, res.Diagnostics.Count(), 0)
	be.True(t, strings.Contains(res.Assembly, "MOVQ greeting(%rip), %rbx"))
	// Labels continue from the first program.
	be.True(t, strings.Contains(res.Assembly, ".L1: .string \"!\""))
	be.Equal(t, s.Symbols.Len(), 2)
}

func TestSessionDiagnosticsArePerProgram(t *testing.T) {
	s := NewSession(quietOptions(), nil)
	res, _ := s.Compile(mustParse(t, `(program (var (ident "x") integer (ident "nope")))`))
	be.Equal(t, res.Diagnostics.Count(), 2)

	res, _ = s.Compile(mustParse(t, `(program (var (ident "y") integer (integer 2)))`))
	be.Equal(t, res.Diagnostics.Count(), 0)
}

func TestCompileVerboseLog(t *testing.T) {
	var log bytes.Buffer
	opts := DefaultOptions()
	opts.Verbose = true
	opts.Log = &log
	_, err := Compile(mustParse(t, `(program (func (ident "f") (function void) (block)))`), opts, nil)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(log.String(), "resolving 1 declarations"))
	be.True(t, strings.Contains(log.String(), "type checking"))
	be.True(t, strings.Contains(log.String(), "at most 0 scratch registers busy"))
}
