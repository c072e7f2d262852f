package backend

import (
	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/sourcemap"
	"github.com/lhaig/nu/internal/tsbe"
)

// TSBackend wraps tsbe as a Backend implementation.
type TSBackend struct{}

// Name returns the backend name.
func (b *TSBackend) Name() string {
	return "ts"
}

// Dialects returns the supported runtime environments.
func (b *TSBackend) Dialects() []string {
	return []string{"node", "browser", "deno"}
}

// Generate produces TypeScript source code from file.
func (b *TSBackend) Generate(file *ast.File, cfg Config) (string, error) {
	opts, err := b.options(cfg)
	if err != nil {
		return "", err
	}
	return tsbe.Generate(file, opts), nil
}

// GenerateMapped is Generate plus the output-to-source line mapping.
func (b *TSBackend) GenerateMapped(file *ast.File, cfg Config) (string, []sourcemap.Mapping, error) {
	opts, err := b.options(cfg)
	if err != nil {
		return "", nil, err
	}
	out, marks := tsbe.GenerateMapped(file, opts)
	return out, marks, nil
}

func (b *TSBackend) options(cfg Config) (tsbe.Options, error) {
	d, err := dialect(b, cfg)
	if err != nil {
		return tsbe.Options{}, err
	}
	return tsbe.Options{
		Dialect:       d,
		ImportRuntime: cfg.Support == SupportImport,
		Strict:        cfg.Strict,
		NoFormat:      cfg.NoFormat,
	}, nil
}

// SupportFile returns the name and text of the runtime module imported by
// generated code in import mode.
func (b *TSBackend) SupportFile() (string, string) {
	return "nu_runtime.ts", tsbe.Runtime()
}

