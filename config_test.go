package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"testing"

	"github.com/nalgeon/be"
)

func TestLoadOptionsFromEnvironment(t *testing.T) {
	t.Setenv("BMC_FAIL_FAST", "true")
	t.Setenv("BMC_VERBOSE", "1")
	t.Setenv("BMC_DIAGNOSTICS", DiagStdout)
	t.Setenv("BMC_OUTPUT", "out.s")

	opts := LoadOptions()
	be.True(t, opts.FailFast)
	be.True(t, opts.Verbose)
	be.Equal(t, opts.DiagnosticsTo, DiagStdout)
	be.Equal(t, opts.Output, "out.s")
}

func TestLoadOptionsDefaults(t *testing.T) {
	for _, name := range []string{"BMC_FAIL_FAST", "BMC_VERBOSE", "BMC_DIAGNOSTICS", "BMC_OUTPUT"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	opts := LoadOptions()
	be.True(t, !opts.FailFast)
	be.True(t, !opts.Verbose)
	be.Equal(t, opts.DiagnosticsTo, DiagStderr)
	be.Equal(t, opts.Output, "")
}

func TestLoadOptionsSeesLaterChanges(t *testing.T) {
	t.Setenv("BMC_OUTPUT", "first.s")
	be.Equal(t, LoadOptions().Output, "first.s")

	t.Setenv("BMC_OUTPUT", "second.s")
	t.Setenv("BMC_FAIL_FAST", "true")
	opts := LoadOptions()
	be.Equal(t, opts.Output, "second.s")
	be.True(t, opts.FailFast)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	opts := DefaultOptions()
	opts.FailFast = true
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts.RegisterFlags(fs, true)

	err := fs.Parse([]string{"-fail-fast=false", "-diag", "stdout", "-o", "x.s", "-v", "prog.bm"})
	be.Err(t, err, nil)
	be.True(t, !opts.FailFast)
	be.True(t, opts.Verbose)
	be.Equal(t, opts.DiagnosticsTo, DiagStdout)
	be.Equal(t, opts.Output, "x.s")
	be.Equal(t, fs.Arg(0), "prog.bm")
}

func TestOutputFlagIsOptional(t *testing.T) {
	opts := DefaultOptions()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts.RegisterFlags(fs, false)
	be.True(t, fs.Lookup("o") == nil)
	be.True(t, fs.Lookup("fail-fast") != nil)
}

func TestValidateOptions(t *testing.T) {
	opts := DefaultOptions()
	be.Err(t, opts.Validate(), nil)
	opts.DiagnosticsTo = "syslog"
	be.Err(t, opts.Validate(), `invalid diagnostics destination "syslog"`)
}

func TestDiagnosticWriter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := DefaultOptions()
	be.True(t, opts.DiagnosticWriter(&stdout, &stderr) == &stderr)
	opts.DiagnosticsTo = DiagStdout
	be.True(t, opts.DiagnosticWriter(&stdout, &stderr) == &stdout)
}

func TestVerboseLogging(t *testing.T) {
	var log bytes.Buffer
	opts := DefaultOptions()
	opts.Log = &log
	opts.logf("hidden %d", 1)
	be.Equal(t, log.String(), "")

	opts.Verbose = true
	opts.logf("shown %d", 2)
	be.Equal(t, log.String(), "shown 2\n")
}
