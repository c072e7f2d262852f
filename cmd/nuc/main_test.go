package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseConvertFlags(t *testing.T) {
	f, files, err := parseConvertFlags([]string{"--target", "ts", "--dialect", "deno", "--support", "import", "--strict", "-o", "out", "-j", "3", "a.nu", "b.nu"})
	if err != nil {
		t.Fatalf("parseConvertFlags failed: %v", err)
	}
	if f.target != "ts" || f.dialect != "deno" || !f.strict || f.outDir != "out" || f.jobs != 3 {
		t.Errorf("Unexpected flags: %+v", f)
	}
	if strings.Join(files, ",") != "a.nu,b.nu" {
		t.Errorf("Expected two files, got %v", files)
	}
	cfg, err := f.config()
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.Support.String() != "import" || cfg.Dialect != "deno" {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	if _, _, err := parseConvertFlags([]string{"--strict"}); err == nil {
		t.Error("Expected error with no input files")
	}
	f, _, _ = parseConvertFlags([]string{"--support", "bundle", "a.nu"})
	if _, err := f.config(); err == nil {
		t.Error("Expected error for unknown support mode")
	}
}

func TestHandleConvertWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	in := writeSource(t, dir, "hello.nu", "f main() {\n    > \"hi\"\n}")
	out := filepath.Join(dir, "out")

	if code := handleConvert([]string{"--target", "ts", "--support", "import", "-o", out, in}); code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	data, err := os.ReadFile(filepath.Join(out, "hello.ts"))
	if err != nil {
		t.Fatalf("Expected hello.ts: %v", err)
	}
	if !strings.Contains(string(data), "from './nu_runtime';") {
		t.Errorf("Expected runtime import, got:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(out, "nu_runtime.ts")); err != nil {
		t.Errorf("Expected runtime file next to output: %v", err)
	}
}

func TestHandleConvertSourceMap(t *testing.T) {
	dir := t.TempDir()
	in := writeSource(t, dir, "hello.nu", "f main() {\n    > \"hi\"\n}")

	if code := handleConvert([]string{"--target", "cpp", "--sourcemap", in}); code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	data, err := os.ReadFile(filepath.Join(dir, "hello.cpp.map"))
	if err != nil {
		t.Fatalf("Expected hello.cpp.map: %v", err)
	}
	for _, want := range []string{`"target_file": "hello.cpp"`, `"nu_line": 2`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %q in map, got:\n%s", want, data)
		}
	}
}

func TestHandleConvertReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.nu", "f ok() -> i32 { 1 }")
	bad := writeSource(t, dir, "bad.nu", "F broken() {\n    l x = 1;")

	if code := handleConvert([]string{"--target", "rust", good, bad}); code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.rs")); err != nil {
		t.Errorf("Expected good.rs despite the failing file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.rs")); err == nil {
		t.Error("Expected no output for the failing file")
	}
}

func TestHandleParseAndLint(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.nu", "f Bad() -> i32 {\n    M 1 { _ => 0, 2 => 1 }\n}")

	var buf bytes.Buffer
	if code := handleParse([]string{path}, &buf); code != 0 {
		t.Fatalf("parse exit code %d", code)
	}
	if !strings.Contains(buf.String(), "Bad") {
		t.Errorf("Expected function name in tree, got:\n%s", buf.String())
	}

	buf.Reset()
	if code := handleLint([]string{path}, &buf); code != 0 {
		t.Fatalf("lint exit code %d", code)
	}
	for _, want := range []string{"snake_case", "unreachable", "2 warning(s) found."} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected %q in lint output, got:\n%s", want, buf.String())
		}
	}
}

func TestHandleTargets(t *testing.T) {
	var buf bytes.Buffer
	handleTargets(&buf)
	for _, want := range []string{"cpp    cpp23, cpp20 (default cpp23)", "rust   2021", "ts     node, browser, deno"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected %q, got:\n%s", want, buf.String())
		}
	}
}
