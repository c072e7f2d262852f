// Package sourcemap records which Nu source line produced each generated line.
package sourcemap

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Mapping pairs a 1-based output line with the 1-based source line it came from.
type Mapping struct {
	TargetLine int `json:"target_line"`
	NuLine     int `json:"nu_line"`
}

// SourceMap is the line mapping for one converted unit.
type SourceMap struct {
	SourceFile string    `json:"source_file"`
	TargetFile string    `json:"target_file"`
	Mappings   []Mapping `json:"mappings"`
}

// New returns an empty map between source and target.
func New(source, target string) *SourceMap {
	return &SourceMap{SourceFile: source, TargetFile: target}
}

// Add records that targetLine was generated from nuLine. Non-positive lines
// are ignored, as is a repeat of the previous target line.
func (m *SourceMap) Add(targetLine, nuLine int) {
	if targetLine <= 0 || nuLine <= 0 {
		return
	}
	if n := len(m.Mappings); n > 0 && m.Mappings[n-1].TargetLine == targetLine {
		return
	}
	m.Mappings = append(m.Mappings, Mapping{TargetLine: targetLine, NuLine: nuLine})
}

// Len returns the number of recorded mappings.
func (m *SourceMap) Len() int { return len(m.Mappings) }

// NuLine returns the source line for targetLine. Lines between two mappings
// belong to the earlier one.
func (m *SourceMap) NuLine(targetLine int) (int, bool) {
	i := sort.Search(len(m.Mappings), func(i int) bool {
		return m.Mappings[i].TargetLine > targetLine
	})
	if i == 0 {
		return 0, false
	}
	return m.Mappings[i-1].NuLine, true
}

// TargetLine returns the first output line generated from nuLine.
func (m *SourceMap) TargetLine(nuLine int) (int, bool) {
	for _, mp := range m.Mappings {
		if mp.NuLine == nuLine {
			return mp.TargetLine, true
		}
	}
	return 0, false
}

// Marshal encodes the map as indented JSON.
func (m *SourceMap) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode source map: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the map to path.
func (m *SourceMap) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write source map %s: %w", path, err)
	}
	return nil
}

// Load reads a map written by Save.
func Load(path string) (*SourceMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source map %s: %w", path, err)
	}
	m := &SourceMap{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode source map %s: %w", path, err)
	}
	return m, nil
}
