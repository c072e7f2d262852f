package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is one positioned message about a source unit
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
	Column   int
	Snippet  string // offending source text, if any
	Hint     string // optional suggestion
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{}
}

// Add appends a fully built diagnostic
func (d *Diagnostics) Add(item Diagnostic) {
	d.items = append(d.items, item)
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(line, col int, format string, args ...any) {
	d.Add(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Line: line, Column: col})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(line, col int, format string, args ...any) {
	d.Add(Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Line: line, Column: col})
}

// Infof adds an info diagnostic with formatted message
func (d *Diagnostics) Infof(line, col int, format string, args ...any) {
	d.Add(Diagnostic{Severity: Info, Message: fmt.Sprintf(format, args...), Line: line, Column: col})
}

// WarningWithHint adds a warning diagnostic with a suggestion
func (d *Diagnostics) WarningWithHint(line, col int, msg, hint string) {
	d.Add(Diagnostic{Severity: Warning, Message: msg, Line: line, Column: col, Hint: hint})
}

// Passthrough records a construct that was kept verbatim instead of translated
func (d *Diagnostics) Passthrough(line, col int, kind, text string) {
	d.Add(Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf("unrecognized %s passed through", kind),
		Line:     line,
		Column:   col,
		Snippet:  text,
	})
}

// Merge appends every diagnostic of other
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	return d.ErrorCount() > 0
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	return d.filter(Error)
}

// Warnings returns only the warning-level diagnostics
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.filter(Warning)
}

func (d *Diagnostics) filter(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Severity == s {
			out = append(out, item)
		}
	}
	return out
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	return len(d.filter(Error))
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	return len(d.filter(Warning))
}

// Format returns human-readable messages
// Output format:
//
//	error[main.nu:3:1]: block opened by 'F run' is never closed
//	warning[main.nu:5:5]: unrecognized statement passed through
//	  | @@weird line
//	  hint: did you mean 'M'?
func (d *Diagnostics) Format(filename string) string {
	var lines []string
	for _, item := range d.items {
		lines = append(lines, fmt.Sprintf("%s[%s:%d:%d]: %s",
			item.Severity, filename, item.Line, item.Column, item.Message))
		if item.Snippet != "" {
			lines = append(lines, "  | "+item.Snippet)
		}
		if item.Hint != "" {
			lines = append(lines, "  hint: "+item.Hint)
		}
	}
	return strings.Join(lines, "\n")
}
