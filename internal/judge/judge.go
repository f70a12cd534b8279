// Package judge defines the gateway to the LLM judge and the strict
// schema its responses must satisfy. The engine treats the judge as an
// injected, fallible dependency: responses are validated, never repaired.
package judge

import (
	"context"

	"github.com/bailiff-dev/bailiff/internal/pattern"
)

// Score bounds for tactic judgments. ScoreNotApplicable marks a tactic
// the judge considers irrelevant to the code under review.
const (
	ScoreNotApplicable = -1
	MinScore           = 0
	MaxScore           = 5
)

// ConstraintVerdict is the judge's ruling on a single constraint.
type ConstraintVerdict string

const (
	VerdictPass             ConstraintVerdict = "PASS"
	VerdictFail             ConstraintVerdict = "FAIL"
	VerdictExceptionAllowed ConstraintVerdict = "EXCEPTION_ALLOWED"
)

// Valid reports whether v is a known verdict.
func (v ConstraintVerdict) Valid() bool {
	switch v {
	case VerdictPass, VerdictFail, VerdictExceptionAllowed:
		return true
	}
	return false
}

// TacticJudgment is the judge's score for one tactic.
type TacticJudgment struct {
	TacticID  string `json:"tacticId"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// ConstraintJudgment is the judge's ruling for one constraint.
// ExceptionUsed names the declared exception that was applied when the
// verdict is EXCEPTION_ALLOWED.
type ConstraintJudgment struct {
	ConstraintID  string            `json:"constraintId"`
	Verdict       ConstraintVerdict `json:"verdict"`
	Reasoning     string            `json:"reasoning"`
	ExceptionUsed string            `json:"exceptionUsed,omitempty"`
}

// JudgmentPass is one complete judge evaluation of one pattern:
// every declared tactic and constraint judged exactly once.
type JudgmentPass struct {
	Tactics          []TacticJudgment     `json:"tactics"`
	Constraints      []ConstraintJudgment `json:"constraints"`
	OverallReasoning string               `json:"overallReasoning"`
}

// Tactic looks up a tactic judgment by ID.
func (p *JudgmentPass) Tactic(id string) (TacticJudgment, bool) {
	for _, t := range p.Tactics {
		if t.TacticID == id {
			return t, true
		}
	}
	return TacticJudgment{}, false
}

// Constraint looks up a constraint judgment by ID.
func (p *JudgmentPass) Constraint(id string) (ConstraintJudgment, bool) {
	for _, c := range p.Constraints {
		if c.ConstraintID == id {
			return c, true
		}
	}
	return ConstraintJudgment{}, false
}

// Request carries everything the judge needs to evaluate one pattern
// against one body of code.
type Request struct {
	// Pattern is the pattern under evaluation
	Pattern pattern.Pattern

	// TargetPath is the path being reviewed, relative to Workdir
	TargetPath string

	// Workdir is the repository root the judge runs in
	Workdir string

	// Diff is the change under review (empty for whole-tree reviews)
	Diff string

	// Files maps path to contents for the code under review
	Files map[string]string

	// PlanContext optionally describes the feature the change belongs
	// to, so scores account for intent (empty for one-shot reviews)
	PlanContext string
}

// Gateway is the injected judge. Implementations invoke an external
// model, validate the response against the pattern's declared tactics
// and constraints, and return exactly one pass.
type Gateway interface {
	// Judge runs a single evaluation pass. Implementations must respect
	// ctx cancellation; a timeout fails the pass rather than returning
	// partial output.
	Judge(ctx context.Context, req Request) (*JudgmentPass, error)

	// Name identifies the gateway for logs and audit entries.
	Name() string
}
