package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/backend"
	"github.com/lhaig/nu/internal/compiler"
	"github.com/lhaig/nu/internal/linter"
	"github.com/lhaig/nu/internal/logger"
)

const usage = `nuc - convert nu notation to C++, TypeScript or Rust

Usage:
  nuc convert [options] <file.nu>...   Convert files, writing <base>.cpp|.ts|.rs
  nuc parse <file.nu>                  Print the canonical syntax tree
  nuc lint <file.nu>                   Report style and reachability warnings
  nuc targets                          List targets and their dialects
  nuc help                             Show this message

Convert options:
  --target cpp|ts|rust      Output language (default cpp)
  --dialect d               cpp20 or cpp23; node, browser or deno; 2021
  --support inline|import   Embed support code or write it next to the output
  --strict                  Emit unrecognized constructs as comments only
  --no-format               Lower print macros without the format helper
  --sourcemap               Write <output>.map with output-to-source line pairs
  -o dir                    Output directory (default: beside each input)
  -j n                      Files converted in parallel (default: CPU count)
  -v                        Log conversion phases
  --log-format text|json    Log output format

Examples:
  nuc convert hello.nu                       Write hello.cpp (C++23)
  nuc convert --target ts -o out a.nu b.nu   Write out/a.ts and out/b.ts
  nuc convert --target rust lib.nu           Write lib.rs
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "convert":
		os.Exit(handleConvert(os.Args[2:]))
	case "parse":
		os.Exit(handleParse(os.Args[2:], os.Stdout))
	case "lint":
		os.Exit(handleLint(os.Args[2:], os.Stdout))
	case "targets":
		handleTargets(os.Stdout)
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

type convertFlags struct {
	target    string
	dialect   string
	support   string
	strict    bool
	noFormat  bool
	sourceMap bool
	outDir    string
	jobs      int
	verbose   bool
	logFormat string
}

func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.target, "target", "cpp", "output language")
	fs.StringVar(&f.dialect, "dialect", "", "target dialect")
	fs.StringVar(&f.support, "support", "inline", "support code placement")
	fs.BoolVar(&f.strict, "strict", false, "comment out unrecognized constructs")
	fs.BoolVar(&f.noFormat, "no-format", false, "lower print macros without the format helper")
	fs.BoolVar(&f.sourceMap, "sourcemap", false, "write a line map next to each output")
	fs.StringVar(&f.outDir, "o", "", "output directory")
	fs.IntVar(&f.jobs, "j", runtime.NumCPU(), "parallel conversions")
	fs.BoolVar(&f.verbose, "v", false, "log conversion phases")
	fs.StringVar(&f.logFormat, "log-format", "text", "log format")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() == 0 {
		return nil, nil, errors.New("no input file specified")
	}
	return f, fs.Args(), nil
}

func (f *convertFlags) config() (backend.Config, error) {
	mode, err := backend.ParseSupportMode(f.support)
	if err != nil {
		return backend.Config{}, err
	}
	return backend.Config{
		Dialect:   f.dialect,
		Support:   mode,
		Strict:    f.strict,
		NoFormat:  f.noFormat,
		SourceMap: f.sourceMap,
	}, nil
}

func handleConvert(args []string) int {
	f, files, err := parseConvertFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Print(usage)
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	cfg, err := f.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	logCfg := logger.DefaultConfig()
	logCfg.Format = f.logFormat
	if f.verbose {
		logCfg.Level = logger.LevelDebug
	}
	closeLog, err := logger.Init(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer closeLog()

	if _, err := compiler.Lookup(f.target); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	units, err := compiler.LoadUnits(files, f.target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := compiler.ConvertAll(ctx, units, cfg, f.jobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	status := 0
	supportDirs := make(map[string]bool)
	for _, r := range results {
		name := r.Unit.Name
		if r.Result != nil && r.Result.Diagnostics != nil && r.Result.Diagnostics.Count() > 0 {
			fmt.Fprintln(os.Stderr, r.Result.Diagnostics.Format(name))
		}
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", name, r.Err)
			status = 1
			continue
		}
		outPath, err := compiler.OutputPath(name, f.outDir, f.target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
		if err := compiler.WriteOutput(r.Result, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			status = 1
			continue
		}
		fmt.Printf("Wrote %s\n", outPath)
		mapPath, err := compiler.WriteSourceMap(r.Result, outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			status = 1
			continue
		}
		if mapPath != "" {
			fmt.Printf("Wrote %s\n", mapPath)
		}
		if cfg.Support == backend.SupportImport {
			supportDirs[filepath.Dir(outPath)] = true
		}
	}

	for dir := range supportDirs {
		path, err := compiler.WriteSupportFile(f.target, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			status = 1
			continue
		}
		if path != "" {
			fmt.Printf("Wrote %s\n", path)
		}
	}
	return status
}

// parseFile reads and parses the single file named in args. Diagnostics go
// to stderr; a nil file means the command should fail.
func parseFile(args []string) (*ast.File, string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		return nil, ""
	}

	filePath := args[0]
	source, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		return nil, filePath
	}

	file, diags, err := compiler.Parse(string(source))
	if diags.Count() > 0 {
		fmt.Fprintln(os.Stderr, diags.Format(filePath))
	}
	if err != nil {
		return nil, filePath
	}
	return file, filePath
}

func handleParse(args []string, w io.Writer) int {
	file, _ := parseFile(args)
	if file == nil {
		return 1
	}
	fmt.Fprint(w, ast.Print(file))
	return 0
}

func handleLint(args []string, w io.Writer) int {
	file, filePath := parseFile(args)
	if file == nil {
		return 1
	}

	diag := linter.Lint(file)

	if diag.Count() == 0 {
		fmt.Fprintln(w, "No lint warnings.")
		return 0
	}

	fmt.Fprint(w, diag.Format(filePath))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d warning(s) found.\n", diag.Count())
	return 0
}

func handleTargets(w io.Writer) {
	for _, name := range compiler.Targets() {
		be, _ := compiler.Lookup(name)
		ds := be.Dialects()
		fmt.Fprintf(w, "%-6s %s (default %s)\n", name, strings.Join(ds, ", "), ds[0])
	}
}
