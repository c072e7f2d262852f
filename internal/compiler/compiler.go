package compiler

import (
	"errors"
	"fmt"
	"time"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/backend"
	"github.com/lhaig/nu/internal/diagnostic"
	"github.com/lhaig/nu/internal/logger"
	"github.com/lhaig/nu/internal/parser"
	"github.com/lhaig/nu/internal/sourcemap"
)

// ErrConversionFailed is returned when the input has error diagnostics. The
// parser's *parser.UnclosedBlockError is wrapped alongside it.
var ErrConversionFailed = errors.New("conversion failed")

// Result holds the output of a conversion
type Result struct {
	Target      string
	Source      string
	File        *ast.File
	Diagnostics *diagnostic.Diagnostics
	SourceMap   *sourcemap.SourceMap // nil unless cfg.SourceMap was set
}

// Parse runs the surface parser only. The returned error is the parser's
// first unrecoverable problem wrapped in ErrConversionFailed.
func Parse(source string) (*ast.File, *diagnostic.Diagnostics, error) {
	return parse("input", source)
}

func parse(name, source string) (*ast.File, *diagnostic.Diagnostics, error) {
	start := time.Now()
	p := parser.New(source)
	file := p.Parse()
	diags := p.Diagnostics()
	logger.LogPhase("parse", name, time.Since(start))
	logger.LogParsing(name, len(file.Items), diags.WarningCount())
	for _, d := range diags.Warnings() {
		logger.LogWarning("parse", name, d.Line, d.Message)
	}

	if diags.HasErrors() {
		if err := p.Err(); err != nil {
			return file, diags, fmt.Errorf("%w: %w", ErrConversionFailed, err)
		}
		return file, diags, fmt.Errorf("%w: %d error(s)", ErrConversionFailed, diags.ErrorCount())
	}
	return file, diags, nil
}

// Convert runs the full pipeline: parse -> target backend. An unknown target
// or dialect is reported before any parsing happens.
func Convert(source, target string, cfg backend.Config) (*Result, error) {
	return convert("input", source, target, cfg)
}

func convert(name, source, target string, cfg backend.Config) (*Result, error) {
	be, err := Lookup(target)
	if err != nil {
		return nil, err
	}
	res := &Result{Target: be.Name()}

	file, diags, err := parse(name, source)
	res.File = file
	res.Diagnostics = diags
	if err != nil {
		return res, err
	}

	start := time.Now()
	out, marks, err := generate(be, file, cfg)
	if err != nil {
		return res, fmt.Errorf("%s: %w", be.Name(), err)
	}
	if cfg.SourceMap {
		res.SourceMap = sourcemap.New(name, "")
		res.SourceMap.Mappings = marks
	}
	logger.LogPhase("generate", name, time.Since(start))
	logger.LogCodeGen(be.Name(), cfg.Dialect, name, len(out))

	res.Source = out
	return res, nil
}

func generate(be backend.Backend, file *ast.File, cfg backend.Config) (string, []sourcemap.Mapping, error) {
	if lm, ok := be.(backend.LineMapper); ok && cfg.SourceMap {
		return lm.GenerateMapped(file, cfg)
	}
	out, err := be.Generate(file, cfg)
	return out, nil, err
}
