// Command tacc compiles source files to three-address code.
//
//	tacc [flags] file...
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"tacc/pkg/compiler"
	"tacc/pkg/logger"
	"tacc/pkg/tac"
	"tacc/pkg/utils"
)

type config struct {
	tokens   bool
	symbols  bool
	run      bool
	write    bool
	trace    bool
	jobs     int
	maxSteps int
	header   bool // print a "== file ==" line before each listing
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tacc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfg config
	fs.BoolVar(&cfg.tokens, "tokens", false, "print the token stream")
	fs.BoolVar(&cfg.symbols, "symbols", false, "print the symbol table")
	fs.BoolVar(&cfg.run, "run", false, "interpret the generated TAC and print final variable values")
	fs.BoolVar(&cfg.write, "write", false, "write each listing next to its source with a .tac extension")
	fs.BoolVar(&cfg.trace, "trace", false, "log every parser step (needs -log-level debug)")
	fs.IntVar(&cfg.jobs, "j", runtime.GOMAXPROCS(0), "maximum number of files compiled concurrently")
	fs.IntVar(&cfg.maxSteps, "max-steps", tac.DefaultStepLimit, "instruction limit for -run")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	logFormat := fs.String("log-format", "text", "log format: text or json")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "nothing to do: provide one or more source files")
		fs.Usage()
		return 2
	}

	lvl, err := logger.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := logger.Init(logger.Config{Level: lvl, Format: *logFormat, Output: stderr}); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	files := fs.Args()
	cfg.header = len(files) > 1
	outputs := make([]bytes.Buffer, len(files))
	failures := make([]error, len(files))

	var g errgroup.Group
	if cfg.jobs > 0 {
		g.SetLimit(cfg.jobs)
	}
	for i, path := range files {
		g.Go(func() error {
			failures[i] = compileFile(path, cfg, &outputs[i])
			return nil
		})
	}
	_ = g.Wait()

	// Only the fatal message of a failed file goes to stderr.
	status := 0
	for i, path := range files {
		_, _ = outputs[i].WriteTo(stdout)
		if failures[i] != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, failures[i])
			status = 1
		}
	}
	return status
}

// compileFile handles one source file. Everything it prints goes to out so
// that concurrent compilations can be reported in argument order.
func compileFile(path string, cfg config, out *bytes.Buffer) error {
	fullPath, src, err := utils.ReadSource(path)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	log := logger.With("file", filepath.Base(fullPath))
	res, err := compiler.Compile(src, compiler.Options{Logger: log, Trace: cfg.trace})

	if cfg.tokens {
		fmt.Fprintf(out, "Tokens (%d)\n", len(res.Tokens))
		for _, tok := range res.Tokens {
			fmt.Fprintln(out, " ", tok)
		}
		fmt.Fprintln(out)
	}
	for _, d := range res.Diagnostics {
		if d.Kind.Lexical() {
			fmt.Fprintf(out, "%s: warning: %v\n", path, d)
		}
	}
	if err != nil {
		return err
	}

	if cfg.header {
		fmt.Fprintf(out, "== %s ==\n", path)
	}
	fmt.Fprint(out, res.Program)
	if cfg.symbols {
		fmt.Fprintln(out)
		fmt.Fprint(out, res.Symbols)
	}

	if cfg.write {
		dest := utils.ReplaceExt(fullPath, ".tac")
		if err := os.WriteFile(dest, []byte(res.Program.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write %q: %w", dest, err)
		}
	}

	if cfg.run {
		m, err := tac.NewMachine(res.Program)
		if err != nil {
			return err
		}
		m.StepLimit = cfg.maxSteps
		if err := m.Run(); err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, tac.FormatVars(m.Vars))
	}
	return nil
}
