package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lhaig/nu/internal/backend"
)

// OutputPath returns where the conversion of input for target is written:
// the input's base name with the target extension, inside outDir when set.
func OutputPath(input, outDir, target string) (string, error) {
	be, err := Lookup(target)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name := base + backend.Extension(be.Name())
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), name), nil
	}
	return filepath.Join(outDir, name), nil
}

// WriteOutput writes res to path, creating the parent directory if needed.
func WriteOutput(res *Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(res.Source), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// SourceMapPath returns where the line map for the output at path is written.
func SourceMapPath(path string) string {
	return path + ".map"
}

// WriteSourceMap writes the line map of res next to the output at path and
// returns the map's path, or "" when res carries no map.
func WriteSourceMap(res *Result, path string) (string, error) {
	if res.SourceMap == nil {
		return "", nil
	}
	res.SourceMap.TargetFile = filepath.Base(path)
	mapPath := SourceMapPath(path)
	if err := res.SourceMap.Save(mapPath); err != nil {
		return "", err
	}
	return mapPath, nil
}

// WriteSupportFile writes the support file that import-mode output for
// target refers to into dir. It returns the written path, or "" when the
// target needs none.
func WriteSupportFile(target, dir string) (string, error) {
	be, err := Lookup(target)
	if err != nil {
		return "", err
	}
	sf, ok := be.(backend.SupportFiler)
	if !ok {
		return "", nil
	}
	name, text := sf.SupportFile()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write support file: %w", err)
	}
	return path, nil
}
