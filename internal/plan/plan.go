package plan

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layer is one architectural layer to implement and review, in order.
type Layer struct {
	// Name identifies the layer (e.g. "domain", "api")
	Name string `yaml:"name"`

	// Patterns restricts scoring to the named patterns for this layer.
	// Empty means use the patterns selected for the run.
	Patterns []string `yaml:"patterns,omitempty"`

	// Threshold overrides the quality gate threshold for this layer
	Threshold *float64 `yaml:"threshold,omitempty"`
}

// UnmarshalYAML accepts either a bare layer name or a full mapping.
func (l *Layer) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		l.Name = node.Value
		return nil
	}

	type rawLayer Layer
	var raw rawLayer
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*l = Layer(raw)
	return nil
}

// Frontmatter is the YAML header of a plan file.
type Frontmatter struct {
	// Feature names what is being built
	Feature string `yaml:"feature"`

	// Threshold overrides the quality gate threshold for the whole run
	Threshold *float64 `yaml:"threshold,omitempty"`

	// Layers are implemented strictly in declaration order
	Layers []Layer `yaml:"layers"`
}

// Plan describes a full run: ordered layers plus the free-form brief
// passed to the implementer.
type Plan struct {
	Feature   string
	Threshold *float64
	Layers    []Layer

	// Body is the markdown after the frontmatter
	Body string

	// Path is where the plan was loaded from (empty for Parse)
	Path string
}

// LayerNames returns the layer names in plan order.
func (p *Plan) LayerNames() []string {
	names := make([]string, len(p.Layers))
	for i, l := range p.Layers {
		names[i] = l.Name
	}
	return names
}

// Layer returns the named layer declaration.
func (p *Plan) Layer(name string) (Layer, bool) {
	for _, l := range p.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// ParseFrontmatter extracts YAML frontmatter from markdown content.
// Returns the frontmatter string and the remaining content.
// Frontmatter is delimited by --- on its own line at start and end.
func ParseFrontmatter(content []byte) (frontmatter []byte, body []byte, err error) {
	// Frontmatter must start at the very beginning
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, content, nil
	}

	// Find the closing delimiter
	// Start searching after the opening "---\n"
	remaining := content[4:]
	closingIdx := bytes.Index(remaining, []byte("\n---\n"))
	if closingIdx == -1 {
		return nil, nil, fmt.Errorf("unclosed frontmatter: missing closing '---'")
	}

	// Extract frontmatter (between the delimiters, excluding the delimiters themselves)
	frontmatter = remaining[:closingIdx]

	// Extract body (everything after the closing "---\n")
	bodyStart := 4 + closingIdx + 5 // len("---\n") + closingIdx + len("\n---\n")
	if bodyStart < len(content) {
		body = content[bodyStart:]
	}

	return frontmatter, body, nil
}

// Parse builds a Plan from plan file content.
func Parse(content []byte) (*Plan, error) {
	fm, body, err := ParseFrontmatter(content)
	if err != nil {
		return nil, err
	}
	if fm == nil {
		return nil, fmt.Errorf("plan is missing frontmatter (feature and layers)")
	}

	var header Frontmatter
	if err := yaml.Unmarshal(fm, &header); err != nil {
		return nil, fmt.Errorf("failed to parse plan frontmatter: %w", err)
	}

	p := &Plan{
		Feature:   header.Feature,
		Threshold: header.Threshold,
		Layers:    header.Layers,
		Body:      string(body),
	}

	// Fall back to the first H1 heading when feature is not set
	if p.Feature == "" {
		p.Feature = extractTitle(body)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	p, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

func (p *Plan) validate() error {
	var errs []error

	if p.Feature == "" {
		errs = append(errs, fmt.Errorf("plan needs a feature name (frontmatter or H1 title)"))
	}
	if len(p.Layers) == 0 {
		errs = append(errs, fmt.Errorf("plan needs at least one layer"))
	}

	seen := make(map[string]bool)
	for i, l := range p.Layers {
		if l.Name == "" {
			errs = append(errs, fmt.Errorf("layers[%d]: name must not be empty", i))
			continue
		}
		if seen[l.Name] {
			errs = append(errs, fmt.Errorf("layers[%d]: duplicate layer %q", i, l.Name))
		}
		seen[l.Name] = true

		if l.Threshold != nil && (*l.Threshold < 0 || *l.Threshold > 5) {
			errs = append(errs, fmt.Errorf("layers[%d]: threshold must be between 0 and 5, got %v", i, *l.Threshold))
		}
	}

	if p.Threshold != nil && (*p.Threshold < 0 || *p.Threshold > 5) {
		errs = append(errs, fmt.Errorf("threshold must be between 0 and 5, got %v", *p.Threshold))
	}

	return errors.Join(errs...)
}

// extractTitle extracts the first H1 heading from markdown body
func extractTitle(body []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) >= 2 && line[0] == '#' && line[1] == ' ' {
			return line[2:]
		}
	}
	return ""
}
