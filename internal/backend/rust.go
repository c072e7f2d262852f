package backend

import (
	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/rustbe"
	"github.com/lhaig/nu/internal/sourcemap"
)

// RustBackend wraps rustbe as a Backend implementation.
type RustBackend struct{}

// Name returns the backend name.
func (b *RustBackend) Name() string {
	return "rust"
}

// Dialects returns the supported Rust editions.
func (b *RustBackend) Dialects() []string {
	return []string{"2021"}
}

// Generate produces Rust source code from file. Support mode and NoFormat
// have no effect because the output needs no support code.
func (b *RustBackend) Generate(file *ast.File, cfg Config) (string, error) {
	if _, err := dialect(b, cfg); err != nil {
		return "", err
	}
	return rustbe.Generate(file, rustbe.Options{Strict: cfg.Strict}), nil
}

// GenerateMapped is Generate plus the output-to-source line mapping.
func (b *RustBackend) GenerateMapped(file *ast.File, cfg Config) (string, []sourcemap.Mapping, error) {
	if _, err := dialect(b, cfg); err != nil {
		return "", nil, err
	}
	out, marks := rustbe.GenerateMapped(file, rustbe.Options{Strict: cfg.Strict})
	return out, marks, nil
}
