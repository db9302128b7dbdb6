package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

func showUsage(w io.Writer) {
	fmt.Fprintf(w, `bmc - a B-minor compiler back end targeting x86-64 assembly

Usage:
    bmc <command> [arguments]

Commands:
    build [file]    Compile a program tree to assembly
    check [file]    Resolve and type-check a program tree
    ast [file]      Print a program tree back in canonical form
    repl            Compile declarations interactively
    help            Show this help message

Programs are read as s-expressions, for example
    (program (var (ident "g") integer (integer 5)))
from the named file, or from standard input if no file is given.

Examples:
    bmc build -o prog.s prog.bm
    bmc check -fail-fast prog.bm
    bmc prog.bm > prog.s

Environment:
    BMC_FAIL_FAST, BMC_VERBOSE, BMC_DIAGNOSTICS, BMC_OUTPUT

Use "bmc <command> -h" for more information about a command.
`)
}

// cli holds the process streams so commands can be run from tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run executes one command line and returns the process exit code.
func (c *cli) run(args []string) int {
	if len(args) < 1 {
		showUsage(c.stderr)
		return 1
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "build":
		return c.buildCommand(rest)
	case "check":
		return c.checkCommand(rest)
	case "ast":
		return c.astCommand(rest)
	case "repl":
		return c.replCommand(rest)
	case "help", "-h", "--help":
		showUsage(c.stdout)
		return 0
	default:
		// A bare file name means build.
		if _, err := os.Stat(command); err == nil {
			return c.buildCommand(args)
		}
		fmt.Fprintf(c.stderr, "Unknown command: %s\n\n", command)
		showUsage(c.stderr)
		return 1
	}
}

func (c *cli) newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: bmc %s\n", usage)
		fmt.Fprintf(c.stderr, "%s\n\n", description)
		fmt.Fprintf(c.stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses flags and returns the optional input file name.
func (c *cli) parseArgs(fs *flag.FlagSet, args []string, opts *Options) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(c.stderr, "Error: expected at most one file argument\n")
		fs.Usage()
		return "", false
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return "", false
	}
	opts.Log = c.stderr
	return fs.Arg(0), true
}

// readProgram reads and parses the program from filename, or from stdin
// when filename is empty or "-".
func (c *cli) readProgram(filename string) (*Program, string, error) {
	var src []byte
	var err error
	if filename == "" || filename == "-" {
		filename = "<stdin>"
		src, err = io.ReadAll(c.stdin)
	} else {
		src, err = os.ReadFile(filename)
	}
	if err != nil {
		return nil, filename, errors.Wrapf(err, "reading %s", filename)
	}
	prog, err := ParseProgram(string(src))
	if err != nil {
		return nil, filename, errors.Wrap(err, filename)
	}
	return prog, filename, nil
}

func (c *cli) buildCommand(args []string) int {
	opts := LoadOptions()
	fs := c.newFlagSet("build", "build [-o output] [-v] [-fail-fast] [-diag stderr|stdout] [file]",
		"Compile a program tree to x86-64 assembly")
	opts.RegisterFlags(fs, true)
	filename, ok := c.parseArgs(fs, args, &opts)
	if !ok {
		return 1
	}

	prog, filename, err := c.readProgram(filename)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	output := opts.Output
	if output == "" {
		output = "-"
	}
	opts.logf("Compiling %s to %s...", filename, output)

	res, err := Compile(prog, opts, opts.DiagnosticWriter(c.stdout, c.stderr))
	if err != nil {
		fmt.Fprintf(c.stderr, "Compilation failed: %v\n", err)
		return 1
	}

	if output == "-" {
		io.WriteString(c.stdout, res.Assembly)
	} else if err := os.WriteFile(output, []byte(res.Assembly), 0644); err != nil {
		fmt.Fprintf(c.stderr, "Error writing assembly file %s: %v\n", output, err)
		return 1
	}
	opts.logf("Generated %d bytes of assembly with %d diagnostics", len(res.Assembly), res.Diagnostics.Count())
	return 0
}

func (c *cli) checkCommand(args []string) int {
	opts := LoadOptions()
	fs := c.newFlagSet("check", "check [-v] [-fail-fast] [-diag stderr|stdout] [file]",
		"Resolve and type-check a program tree")
	opts.RegisterFlags(fs, false)
	filename, ok := c.parseArgs(fs, args, &opts)
	if !ok {
		return 1
	}

	prog, filename, err := c.readProgram(filename)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	opts.logf("Checking %s...", filename)

	res, err := Check(prog, opts, opts.DiagnosticWriter(c.stdout, c.stderr))
	if err != nil && errors.Cause(err) != ErrDiagnostics {
		fmt.Fprintf(c.stderr, "Check failed: %v\n", err)
		return 1
	}
	if n := res.Diagnostics.Count(); n > 0 {
		fmt.Fprintf(c.stdout, "%s: %d diagnostics\n", filename, n)
		return 1
	}
	fmt.Fprintf(c.stdout, "%s: no errors found\n", filename)
	if opts.Verbose {
		for _, sym := range res.Symbols.All() {
			opts.logf("%s %s %d %s", sym.Name, sym.Kind, sym.Ordinal, sym.Type)
		}
	}
	return 0
}

func (c *cli) astCommand(args []string) int {
	opts := LoadOptions()
	fs := c.newFlagSet("ast", "ast [file]", "Print a program tree back in canonical form")
	filename, ok := c.parseArgs(fs, args, &opts)
	if !ok {
		return 1
	}
	prog, _, err := c.readProgram(filename)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(c.stdout, ToSExpr(prog))
	return 0
}

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}
