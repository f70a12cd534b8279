package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const calibrationSuffix = ".calibration.yaml"

// calibrationFile is the on-disk shape of a <name>.calibration.yaml
// sibling. Rubric anchors declared here are merged into the pattern's
// tactics, overriding any anchors declared inline.
type calibrationFile struct {
	Pattern string            `yaml:"pattern"`
	Tactics map[string]Rubric `yaml:"tactics"`
}

// Load parses a single pattern file and merges its calibration sibling
// (<name>.calibration.yaml in the same directory) when one exists.
// The returned pattern is validated.
func Load(path string) (*Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	calPath := strings.TrimSuffix(path, filepath.Ext(path)) + calibrationSuffix
	if calData, err := os.ReadFile(calPath); err == nil {
		if err := mergeCalibration(p, calData); err != nil {
			return nil, fmt.Errorf("merge %s: %w", filepath.Base(calPath), err)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Parse decodes a pattern declaration from YAML. Constraints with an
// empty mode default to judge evaluation. The result is not validated;
// callers that accept untrusted input should call Validate.
func Parse(data []byte) (*Pattern, error) {
	var p Pattern
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid pattern YAML: %w", err)
	}

	for i := range p.Constraints {
		if p.Constraints[i].Mode == "" {
			p.Constraints[i].Mode = ModeJudge
		}
	}

	return &p, nil
}

// LoadCatalog loads every pattern from a directory. Files named
// *.calibration.yaml are treated as siblings, not standalone patterns.
// Patterns are returned sorted by name.
func LoadCatalog(dir string) ([]Pattern, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read patterns dir: %w", err)
	}

	var patterns []Pattern
	seen := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if strings.HasSuffix(name, calibrationSuffix) {
			continue
		}

		p, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		if prev, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("pattern %q declared in both %s and %s", p.Name, prev, name)
		}
		seen[p.Name] = name
		patterns = append(patterns, *p)
	}

	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].Name < patterns[j].Name
	})

	return patterns, nil
}

// mergeCalibration folds a calibration file's rubric anchors into the
// pattern. Anchors for unknown tactics are rejected so typos surface
// instead of silently dropping calibration data.
func mergeCalibration(p *Pattern, data []byte) error {
	var cal calibrationFile
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return fmt.Errorf("invalid calibration YAML: %w", err)
	}

	if cal.Pattern != "" && cal.Pattern != p.Name {
		return fmt.Errorf("calibration declares pattern %q, file declares %q", cal.Pattern, p.Name)
	}

	for tacticID, rubric := range cal.Tactics {
		idx := -1
		for i, t := range p.Tactics {
			if t.ID == tacticID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("calibration references unknown tactic %q", tacticID)
		}

		if p.Tactics[idx].Rubric == nil {
			p.Tactics[idx].Rubric = make(Rubric, len(rubric))
		}
		for level, anchor := range rubric {
			p.Tactics[idx].Rubric[level] = anchor
		}
	}

	return nil
}
