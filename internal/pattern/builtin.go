package pattern

import (
	"fmt"
	"sort"
	"strings"
)

// Builtin returns the names of the embedded default patterns, sorted.
func Builtin() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadBuiltin loads an embedded default pattern by name.
func LoadBuiltin(name string) (*Pattern, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("builtin pattern %s not found: %w", name, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("builtin pattern %s: %w", name, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("builtin pattern %s: %w", name, err)
	}
	return p, nil
}

// LoadBuiltinAll loads every embedded default pattern.
func LoadBuiltinAll() ([]Pattern, error) {
	var patterns []Pattern
	for _, name := range Builtin() {
		p, err := LoadBuiltin(name)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, *p)
	}
	return patterns, nil
}
