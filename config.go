package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/xyproto/env/v2"
)

// Where diagnostics are written.
const (
	DiagStderr = "stderr"
	DiagStdout = "stdout"
)

// Options configures a compilation.
type Options struct {
	// FailFast stops after the first pass that reported diagnostics.
	// Otherwise code is generated regardless.
	FailFast bool
	Verbose  bool
	// DiagnosticsTo is DiagStderr or DiagStdout.
	DiagnosticsTo string
	// Output is the assembly output path; "" or "-" means stdout.
	Output string

	// Log receives verbose progress messages.
	Log io.Writer
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DiagnosticsTo: DiagStderr,
		Log:           os.Stderr,
	}
}

// LoadOptions starts from the defaults and applies the BMC_* environment
// variables as they are now.
func LoadOptions() Options {
	// env caches the environment on first use.
	env.Load()
	opts := DefaultOptions()
	opts.FailFast = env.Bool("BMC_FAIL_FAST")
	opts.Verbose = env.Bool("BMC_VERBOSE")
	opts.DiagnosticsTo = env.Str("BMC_DIAGNOSTICS", opts.DiagnosticsTo)
	opts.Output = env.Str("BMC_OUTPUT", opts.Output)
	return opts
}

// RegisterFlags binds command-line flags to opts. Flag defaults are the
// values already in opts, so flags override the environment.
func (opts *Options) RegisterFlags(fs *flag.FlagSet, withOutput bool) {
	fs.BoolVar(&opts.FailFast, "fail-fast", opts.FailFast, "stop at the first pass that reports a diagnostic")
	fs.BoolVar(&opts.Verbose, "v", opts.Verbose, "verbose output")
	fs.StringVar(&opts.DiagnosticsTo, "diag", opts.DiagnosticsTo, "where to write diagnostics: stderr or stdout")
	if withOutput {
		fs.StringVar(&opts.Output, "o", opts.Output, "output assembly file (default stdout)")
	}
}

// Validate checks option values that flags and the environment cannot
// constrain.
func (opts Options) Validate() error {
	switch opts.DiagnosticsTo {
	case DiagStderr, DiagStdout:
		return nil
	}
	return errors.Errorf("invalid diagnostics destination %q (want %s or %s)", opts.DiagnosticsTo, DiagStderr, DiagStdout)
}

// DiagnosticWriter returns the stream diagnostics are echoed to.
func (opts Options) DiagnosticWriter(stdout, stderr io.Writer) io.Writer {
	if opts.DiagnosticsTo == DiagStdout {
		return stdout
	}
	return stderr
}

func (opts Options) logf(format string, args ...any) {
	if opts.Verbose && opts.Log != nil {
		fmt.Fprintf(opts.Log, format+"\n", args...)
	}
}
