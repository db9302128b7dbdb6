package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/strager/bminor/sexy"
)

const (
	historyFile = ".bmc_history"
	promptMain  = "bmc> "
	promptCont  = "...> "
)

// repl compiles one entry at a time in a shared session, so later entries
// can use the globals and functions declared by earlier ones.
type repl struct {
	session *Session
	out     io.Writer
}

func newRepl(opts Options, out, diagOut io.Writer) *repl {
	return &repl{session: NewSession(opts, diagOut), out: out}
}

// readEntry turns a datum into a program. An entry is either a whole
// (program ...) or a single declaration.
func readEntry(src string) (*Program, error) {
	node, err := sexy.Parse(src)
	if err != nil {
		return nil, err
	}
	if node.Head() != "program" {
		node = sexy.NewList(sexy.NewSymbol("program"), node)
	}
	return ReadProgram(node)
}

// eval compiles one entry and prints its assembly.
func (r *repl) eval(src string) error {
	prog, err := readEntry(src)
	if err != nil {
		return err
	}
	res, err := r.session.Compile(prog)
	if err != nil {
		return err
	}
	io.WriteString(r.out, res.Assembly)
	return nil
}

// command handles a line starting with ':'. It reports whether the REPL
// should exit.
func (r *repl) command(line string) (exit bool) {
	switch strings.TrimSpace(strings.ToLower(line)) {
	case ":quit", ":q":
		return true
	case ":symbols":
		for _, sym := range r.session.Symbols.All() {
			fmt.Fprintf(r.out, "%-12s %-6s %3d  %s\n", sym.Name, sym.Kind, sym.Ordinal, sym.Type)
		}
	case ":help":
		fmt.Fprintln(r.out, "Enter a declaration such as (var (ident \"x\") integer (integer 1)),")
		fmt.Fprintln(r.out, "or a whole (program ...). Commands: :symbols :quit")
	default:
		fmt.Fprintln(r.out, "unknown command. Type :help for help.")
	}
	return false
}

func (c *cli) replCommand(args []string) int {
	opts := LoadOptions()
	fs := c.newFlagSet("repl", "repl [-v] [-fail-fast]", "Compile declarations interactively")
	opts.RegisterFlags(fs, false)
	if _, ok := c.parseArgs(fs, args, &opts); !ok {
		return 1
	}

	r := newRepl(opts, c.stdout, opts.DiagnosticWriter(c.stdout, c.stderr))
	fmt.Fprintln(c.stdout, "bmc interactive compiler. Type :help for help.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(c.stdout)
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			if r.command(src) {
				return 0
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if err := r.eval(src); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
		}
	}
}

// readByParseProbe keeps reading lines until they form a complete datum.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending entry.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := sexy.Parse(src); perr != nil && sexy.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
