package backend

import (
	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/cppbe"
	"github.com/lhaig/nu/internal/sourcemap"
)

// CppBackend wraps cppbe as a Backend implementation.
type CppBackend struct{}

// Name returns the backend name.
func (b *CppBackend) Name() string {
	return "cpp"
}

// Dialects returns the supported language standards.
func (b *CppBackend) Dialects() []string {
	return []string{"cpp23", "cpp20"}
}

// Generate produces C++ source code from file.
func (b *CppBackend) Generate(file *ast.File, cfg Config) (string, error) {
	opts, err := b.options(cfg)
	if err != nil {
		return "", err
	}
	return cppbe.Generate(file, opts), nil
}

// GenerateMapped is Generate plus the output-to-source line mapping.
func (b *CppBackend) GenerateMapped(file *ast.File, cfg Config) (string, []sourcemap.Mapping, error) {
	opts, err := b.options(cfg)
	if err != nil {
		return "", nil, err
	}
	out, marks := cppbe.GenerateMapped(file, opts)
	return out, marks, nil
}

func (b *CppBackend) options(cfg Config) (cppbe.Options, error) {
	d, err := dialect(b, cfg)
	if err != nil {
		return cppbe.Options{}, err
	}
	return cppbe.Options{
		Cpp23:         d == "cpp23",
		ImportSupport: cfg.Support == SupportImport,
		Strict:        cfg.Strict,
		NoFormat:      cfg.NoFormat,
	}, nil
}

// SupportFile returns the name and text of the header imported by
// generated code in import mode.
func (b *CppBackend) SupportFile() (string, string) {
	return "nu_core.hpp", cppbe.SupportHeader()
}
