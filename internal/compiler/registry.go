package compiler

import (
	"fmt"
	"slices"

	"github.com/lhaig/nu/internal/backend"
)

// targets maps every accepted target name to its backend. The canonical
// name of each backend is also a key.
var targets = map[string]backend.Backend{
	"cpp":        &backend.CppBackend{},
	"c++":        &backend.CppBackend{},
	"ts":         &backend.TSBackend{},
	"typescript": &backend.TSBackend{},
	"rust":       &backend.RustBackend{},
	"rs":         &backend.RustBackend{},
}

// Lookup returns the backend registered for target.
func Lookup(target string) (backend.Backend, error) {
	be, ok := targets[target]
	if !ok {
		return nil, fmt.Errorf("unknown target: %s (want one of %v)", target, Targets())
	}
	return be, nil
}

// Targets returns the canonical target names in sorted order.
func Targets() []string {
	var names []string
	for name, be := range targets {
		if name == be.Name() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
