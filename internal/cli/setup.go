package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bailiff-dev/bailiff/internal/audit"
	"github.com/bailiff-dev/bailiff/internal/config"
	"github.com/bailiff-dev/bailiff/internal/cycle"
	"github.com/bailiff-dev/bailiff/internal/pattern"
	"github.com/bailiff-dev/bailiff/internal/plan"
)

// loadCatalog loads the configured pattern directory merged with the
// embedded builtin catalog. A directory pattern shadows a builtin with
// the same name.
func loadCatalog(cfg *config.Config) ([]pattern.Pattern, error) {
	var catalog []pattern.Pattern

	if cfg.Patterns.IncludeBuiltin {
		builtin, err := pattern.LoadBuiltinAll()
		if err != nil {
			return nil, fmt.Errorf("load builtin patterns: %w", err)
		}
		catalog = builtin
	}

	loaded, err := pattern.LoadCatalog(cfg.Patterns.Dir)
	if err != nil {
		// A missing directory is fine when the builtins are available.
		if errors.Is(err, fs.ErrNotExist) && len(catalog) > 0 {
			return catalog, nil
		}
		return nil, err
	}

	shadowed := make(map[string]bool, len(loaded))
	for _, p := range loaded {
		shadowed[p.Name] = true
	}
	merged := make([]pattern.Pattern, 0, len(catalog)+len(loaded))
	for _, p := range catalog {
		if !shadowed[p.Name] {
			merged = append(merged, p)
		}
	}
	return append(merged, loaded...), nil
}

// selectPatterns filters the catalog down to the named patterns.
// Empty names selects the whole catalog.
func selectPatterns(catalog []pattern.Pattern, names []string) ([]pattern.Pattern, error) {
	if len(names) == 0 {
		return catalog, nil
	}

	byName := make(map[string]pattern.Pattern, len(catalog))
	for _, p := range catalog {
		byName[p.Name] = p
	}

	out := make([]pattern.Pattern, 0, len(names))
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown pattern %q", name)
		}
		out = append(out, p)
	}
	return out, nil
}

// layerSpecs resolves the plan's layers against the catalog: per-layer
// pattern overrides, then the config's active set, then everything.
func layerSpecs(p *plan.Plan, catalog []pattern.Pattern, cfg *config.Config) ([]cycle.LayerSpec, error) {
	active, err := selectPatterns(catalog, cfg.Patterns.Active)
	if err != nil {
		return nil, err
	}

	specs := make([]cycle.LayerSpec, 0, len(p.Layers))
	for _, layer := range p.Layers {
		patterns := active
		if len(layer.Patterns) > 0 {
			patterns, err = selectPatterns(catalog, layer.Patterns)
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", layer.Name, err)
			}
		}
		if len(patterns) == 0 {
			return nil, fmt.Errorf("layer %s has no patterns to review against", layer.Name)
		}

		spec := cycle.LayerSpec{Name: layer.Name, Patterns: patterns}
		if layer.Threshold != nil {
			spec.Threshold = *layer.Threshold
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// openAuditSink opens the configured audit backend.
func openAuditSink(cfg *config.Config) (audit.Sink, error) {
	switch cfg.Audit.Backend {
	case "", "jsonl":
		return audit.NewFileSink(cfg.Audit.Dir)
	case "sqlite":
		return audit.NewSQLiteSink(cfg.Audit.DBPath)
	case "both":
		file, err := audit.NewFileSink(cfg.Audit.Dir)
		if err != nil {
			return nil, err
		}
		db, err := audit.NewSQLiteSink(cfg.Audit.DBPath)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return audit.NewMulti(file, db), nil
	default:
		return nil, fmt.Errorf("unknown audit backend: %s", cfg.Audit.Backend)
	}
}

// repoRoot returns the directory the tool operates in.
func repoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
