package main

import (
	"fmt"
	"io"
	"strings"
)

// DiagnosticKind tells which pass reported a diagnostic.
type DiagnosticKind int

const (
	DiagResolve DiagnosticKind = iota
	DiagType
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagResolve:
		return "resolve error"
	case DiagType:
		return "type error"
	default:
		return "error"
	}
}

// Diagnostic is a recoverable error found in the program. Diagnostics never
// stop a pass.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return d.Kind.String() + ": " + d.Message
}

// Diagnostics collects diagnostics in the order they are reported and echoes
// each one to a writer as soon as it arrives. A nil *Diagnostics discards
// everything.
type Diagnostics struct {
	list []Diagnostic
	echo io.Writer
}

// NewDiagnostics returns an empty collection. echo may be nil.
func NewDiagnostics(echo io.Writer) *Diagnostics {
	return &Diagnostics{echo: echo}
}

func (d *Diagnostics) Add(kind DiagnosticKind, message string) {
	if d == nil {
		return
	}
	diag := Diagnostic{Kind: kind, Message: message}
	d.list = append(d.list, diag)
	if d.echo != nil {
		fmt.Fprintln(d.echo, diag.String())
	}
}

func (d *Diagnostics) Resolvef(format string, args ...any) {
	d.Add(DiagResolve, fmt.Sprintf(format, args...))
}

func (d *Diagnostics) Typef(format string, args ...any) {
	d.Add(DiagType, fmt.Sprintf(format, args...))
}

func (d *Diagnostics) Count() int {
	if d == nil {
		return 0
	}
	return len(d.list)
}

func (d *Diagnostics) HasErrors() bool {
	return d.Count() > 0
}

// All returns the collected diagnostics in report order.
func (d *Diagnostics) All() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.list
}

// Messages returns each diagnostic rendered as one line.
func (d *Diagnostics) Messages() []string {
	var out []string
	for _, diag := range d.All() {
		out = append(out, diag.String())
	}
	return out
}

func (d *Diagnostics) String() string {
	return strings.Join(d.Messages(), "\n")
}
