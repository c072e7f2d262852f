package diagnostic

import (
	"strings"
	"testing"
)

func TestCounts(t *testing.T) {
	d := New()
	d.Errorf(1, 1, "block opened by '%s' is never closed", "F run")
	d.Warningf(2, 3, "unused")
	d.Infof(3, 1, "note")
	d.Passthrough(4, 5, "statement", "@@ weird")

	if !d.HasErrors() {
		t.Errorf("Expected HasErrors to be true")
	}
	if d.Count() != 4 {
		t.Errorf("Expected 4 diagnostics, got %d", d.Count())
	}
	if d.ErrorCount() != 1 {
		t.Errorf("Expected 1 error, got %d", d.ErrorCount())
	}
	if d.WarningCount() != 2 {
		t.Errorf("Expected 2 warnings, got %d", d.WarningCount())
	}
	if len(d.Errors()) != 1 || len(d.Warnings()) != 2 {
		t.Errorf("Unexpected filtered lengths: %d errors, %d warnings", len(d.Errors()), len(d.Warnings()))
	}
}

func TestFormat(t *testing.T) {
	d := New()
	d.Errorf(3, 1, "block opened by 'F run' is never closed")
	d.Passthrough(5, 5, "statement", "@@ weird")
	d.WarningWithHint(7, 1, "function 'Run' should use snake_case naming", "rename to 'run'")

	out := d.Format("main.nu")
	for _, want := range []string{
		"error[main.nu:3:1]: block opened by 'F run' is never closed",
		"warning[main.nu:5:5]: unrecognized statement passed through",
		"  | @@ weird",
		"  hint: rename to 'run'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.HasSuffix(out, "\n") {
		t.Errorf("Expected no trailing newline, got:\n%q", out)
	}
}

func TestMerge(t *testing.T) {
	a := New()
	a.Warningf(1, 1, "a")
	b := New()
	b.Errorf(2, 1, "b")
	a.Merge(b)
	a.Merge(nil)
	if a.Count() != 2 || !a.HasErrors() {
		t.Errorf("Expected merged collection with error, got %d items", a.Count())
	}
	if New().Format("x") != "" {
		t.Errorf("Expected empty format for empty collection")
	}
}
