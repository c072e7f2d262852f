package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Init(Config{Level: LevelWarn, Output: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Init(Config{Level: LevelError, Output: &bytes.Buffer{}})

	LogPhase("parse", "a.nu", time.Millisecond)
	LogWarning("parse", "a.nu", 3, "unrecognized item passed through")

	out := buf.String()
	if strings.Contains(out, "phase complete") {
		t.Errorf("Expected debug output to be filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "conversion warning") || !strings.Contains(out, "line=3") {
		t.Errorf("Expected warning with line attribute, got:\n%s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Init(Config{Level: LevelDebug, Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Init(Config{Level: LevelError, Output: &bytes.Buffer{}})

	LogCodeGen("ts", "node", "a.nu", 42)

	out := buf.String()
	for _, want := range []string{`"msg":"code generation complete"`, `"target":"ts"`, `"bytes":42`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in output, got:\n%s", want, out)
		}
	}
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nuc.log")
	closeLog, err := Init(Config{Level: LevelInfo, LogFile: path})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	LogFileProcessing("main.nu")
	if err := closeLog(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	defer Init(Config{Level: LevelError, Output: &bytes.Buffer{}})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "file=main.nu") {
		t.Errorf("Expected file attribute in log file, got:\n%s", data)
	}
}

func TestInitErrors(t *testing.T) {
	if _, err := Init(Config{Format: "xml", Output: &bytes.Buffer{}}); err == nil {
		t.Error("Expected error for unknown format")
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
	if lvl, err := ParseLevel("debug"); err != nil || lvl != LevelDebug {
		t.Errorf("ParseLevel(debug) = %v, %v", lvl, err)
	}
}
