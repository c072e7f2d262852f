package backend

import (
	"fmt"
	"slices"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/sourcemap"
)

// SupportMode selects how a target's support code reaches the output.
type SupportMode int

const (
	SupportInline SupportMode = iota // embed the support text in the output
	SupportImport                    // reference a support file next to the output
)

// String returns the flag spelling of the mode.
func (m SupportMode) String() string {
	if m == SupportImport {
		return "import"
	}
	return "inline"
}

// ParseSupportMode parses "inline" or "import". The empty string is inline.
func ParseSupportMode(s string) (SupportMode, error) {
	switch s {
	case "", "inline":
		return SupportInline, nil
	case "import":
		return SupportImport, nil
	default:
		return SupportInline, fmt.Errorf("unknown support mode: %s", s)
	}
}

// Config controls one conversion. The zero value uses the target's default
// dialect, inlines support code, passes unrecognized text through and keeps
// format helpers.
type Config struct {
	Dialect  string
	Support  SupportMode
	Strict   bool // passthrough constructs become comments only
	NoFormat bool // print macros lower without the format helper

	// SourceMap asks line-mapping backends for output-to-source line pairs.
	SourceMap bool
}

// Backend is the interface that all code generation backends implement.
type Backend interface {
	// Name returns the backend name (e.g., "cpp", "ts", "rust")
	Name() string
	// Dialects lists the accepted dialects, default first.
	Dialects() []string
	// Generate produces target source text from a canonical file.
	Generate(file *ast.File, cfg Config) (string, error)
}

// LineMapper is implemented by backends that can report which source line
// produced each output line.
type LineMapper interface {
	GenerateMapped(file *ast.File, cfg Config) (string, []sourcemap.Mapping, error)
}

// SupportFiler is implemented by backends whose import mode needs a file
// written next to the output.
type SupportFiler interface {
	SupportFile() (name, text string)
}

// Extension returns the output file extension for a backend name.
func Extension(name string) string {
	switch name {
	case "cpp":
		return ".cpp"
	case "ts":
		return ".ts"
	case "rust":
		return ".rs"
	default:
		return ""
	}
}

// dialect resolves cfg.Dialect against b, falling back to the default.
func dialect(b Backend, cfg Config) (string, error) {
	ds := b.Dialects()
	if cfg.Dialect == "" {
		return ds[0], nil
	}
	if !slices.Contains(ds, cfg.Dialect) {
		return "", fmt.Errorf("unknown %s dialect: %s (want one of %v)", b.Name(), cfg.Dialect, ds)
	}
	return cfg.Dialect, nil
}
