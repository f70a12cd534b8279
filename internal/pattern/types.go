package pattern

// Priority classifies how much a tactic contributes to the weighted score.
type Priority string

const (
	// PriorityCritical marks tactics that gate the review on their own.
	PriorityCritical Priority = "critical"
	// PriorityImportant marks tactics expected to hold in reviewed code.
	PriorityImportant Priority = "important"
	// PriorityOptional marks advisory tactics that never block.
	PriorityOptional Priority = "optional"
)

// Weight returns the scoring weight for this priority level.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityCritical:
		return 3.0
	case PriorityImportant:
		return 2.0
	case PriorityOptional:
		return 1.0
	default:
		return 0
	}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityImportant, PriorityOptional:
		return true
	}
	return false
}

// EvaluationMode selects how a constraint is checked.
type EvaluationMode string

const (
	// ModeJudge sends the constraint to the judge alongside the tactics.
	ModeJudge EvaluationMode = "judge"
	// ModeDeterministic declares the constraint mechanically checkable.
	// These are still judge-evaluated today; the mode is carried through
	// prompts and results so tooling can tell the two apart.
	ModeDeterministic EvaluationMode = "deterministic"
)

// Valid reports whether m is a known evaluation mode.
func (m EvaluationMode) Valid() bool {
	switch m {
	case ModeJudge, ModeDeterministic:
		return true
	}
	return false
}

// Rubric maps score levels (0-5) to calibration anchor descriptions.
// Anchors are inlined verbatim into judge prompts so repeated passes
// score against the same reference points.
type Rubric map[int]string

// Tactic is a gradeable aspect of a pattern, scored 0-5 by the judge
// (or -1 when the tactic does not apply to the code under review).
type Tactic struct {
	// ID uniquely identifies the tactic within its pattern
	ID string `yaml:"id"`

	// Title is the short human-readable name shown in reports
	Title string `yaml:"title"`

	// Description expands on what the tactic checks (optional)
	Description string `yaml:"description,omitempty"`

	// Priority determines the tactic's weight and gate floor
	Priority Priority `yaml:"priority"`

	// Rubric holds the per-level calibration anchors. Validation
	// requires every level 0-5 once inline anchors and the calibration
	// sibling are merged.
	Rubric Rubric `yaml:"rubric,omitempty"`
}

// Constraint is a binary rule the code must satisfy. The judge returns
// PASS, FAIL, or EXCEPTION_ALLOWED when a declared exception applies.
type Constraint struct {
	// ID uniquely identifies the constraint within its pattern
	ID string `yaml:"id"`

	// Rule is the statement the judge checks
	Rule string `yaml:"rule"`

	// Description expands on the rule's intent (optional)
	Description string `yaml:"description,omitempty"`

	// Exceptions lists pre-approved situations where the rule may be waived
	Exceptions []string `yaml:"exceptions,omitempty"`

	// Mode is judge or deterministic (defaults to judge when empty)
	Mode EvaluationMode `yaml:"mode,omitempty"`
}

// Pattern declares an architectural pattern: the tactics it is graded
// on and the hard constraints it imposes.
type Pattern struct {
	// Name uniquely identifies the pattern in the catalog
	Name string `yaml:"name"`

	// Version tracks rubric revisions (free-form, informational)
	Version string `yaml:"version,omitempty"`

	// Description explains the pattern's intent
	Description string `yaml:"description,omitempty"`

	// Goal states what code following the pattern achieves
	Goal string `yaml:"goal,omitempty"`

	// GuidingPolicy states the approach the pattern takes to its goal
	GuidingPolicy string `yaml:"guiding_policy,omitempty"`

	// AppliesTo holds path globs selecting the code this pattern governs.
	// Empty means the pattern applies everywhere.
	AppliesTo []string `yaml:"applies_to,omitempty"`

	// Tactics are the gradeable aspects
	Tactics []Tactic `yaml:"tactics,omitempty"`

	// Constraints are the binary rules
	Constraints []Constraint `yaml:"constraints,omitempty"`
}

// TacticIDs returns the declared tactic IDs in declaration order.
func (p *Pattern) TacticIDs() []string {
	ids := make([]string, 0, len(p.Tactics))
	for _, t := range p.Tactics {
		ids = append(ids, t.ID)
	}
	return ids
}

// ConstraintIDs returns the declared constraint IDs in declaration order.
func (p *Pattern) ConstraintIDs() []string {
	ids := make([]string, 0, len(p.Constraints))
	for _, c := range p.Constraints {
		ids = append(ids, c.ID)
	}
	return ids
}

// TacticByID looks up a tactic by ID.
func (p *Pattern) TacticByID(id string) (Tactic, bool) {
	for _, t := range p.Tactics {
		if t.ID == id {
			return t, true
		}
	}
	return Tactic{}, false
}

// ConstraintByID looks up a constraint by ID.
func (p *Pattern) ConstraintByID(id string) (Constraint, bool) {
	for _, c := range p.Constraints {
		if c.ID == id {
			return c, true
		}
	}
	return Constraint{}, false
}
