package main

import (
	"io"

	"github.com/pkg/errors"
)

// ErrDiagnostics is returned when FailFast is set and a pass reported
// diagnostics.
var ErrDiagnostics = errors.New("compilation stopped after diagnostics")

// Result is everything a compilation produced.
type Result struct {
	Program     *Program
	Symbols     *SymbolTable
	Diagnostics *Diagnostics
	// Assembly is empty when code generation did not run.
	Assembly string
}

// Session compiles programs that share one global scope, one symbol table
// and one label counter. A program compiled later can use the globals and
// functions of earlier ones.
type Session struct {
	opts     Options
	diagOut  io.Writer
	Symbols  *SymbolTable
	resolver *Resolver
	labels   *LabelGen
}

// NewSession returns a session echoing diagnostics to diagOut, which may be
// nil.
func NewSession(opts Options, diagOut io.Writer) *Session {
	symbols := NewSymbolTable()
	return &Session{
		opts:     opts,
		diagOut:  diagOut,
		Symbols:  symbols,
		resolver: NewResolver(symbols, nil),
		labels:   &LabelGen{},
	}
}

// Compile runs resolution, type checking and code generation.
func Compile(prog *Program, opts Options, diagOut io.Writer) (*Result, error) {
	return NewSession(opts, diagOut).Compile(prog)
}

// Check runs resolution and type checking only.
func Check(prog *Program, opts Options, diagOut io.Writer) (*Result, error) {
	return NewSession(opts, diagOut).Check(prog)
}

func (s *Session) Compile(prog *Program) (*Result, error) {
	return s.run(prog, true)
}

func (s *Session) Check(prog *Program) (*Result, error) {
	return s.run(prog, false)
}

func (s *Session) run(prog *Program, generate bool) (*Result, error) {
	diag := NewDiagnostics(s.diagOut)
	res := &Result{Program: prog, Symbols: s.Symbols, Diagnostics: diag}

	s.opts.logf("resolving %d declarations", len(prog.Decls))
	s.resolver.Diag = diag
	s.resolver.ResolveProgram(prog)
	if err := s.stopOnDiagnostics(diag, "resolution"); err != nil {
		return res, err
	}

	s.opts.logf("type checking")
	NewTypeChecker(s.Symbols, diag).CheckProgram(prog)
	if err := s.stopOnDiagnostics(diag, "type checking"); err != nil {
		return res, err
	}
	if !generate {
		return res, nil
	}

	s.opts.logf("generating code (%d diagnostics)", diag.Count())
	cg := NewCodeGen(s.Symbols, s.labels)
	asm, err := cg.Generate(prog)
	if err != nil {
		return res, errors.Wrap(err, "code generation")
	}
	res.Assembly = asm
	s.opts.logf("generated %d labels, at most %d scratch registers busy", s.labels.Count(), cg.MaxRegisters())
	return res, nil
}

func (s *Session) stopOnDiagnostics(diag *Diagnostics, pass string) error {
	if !s.opts.FailFast || !diag.HasErrors() {
		return nil
	}
	return errors.Wrapf(ErrDiagnostics, "%s reported %d diagnostics", pass, diag.Count())
}
