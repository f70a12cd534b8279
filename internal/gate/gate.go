// Package gate decides whether an evaluation passes review. A decision
// collects every triggered reason, not just the first, so fix prompts
// and escalation messages can show the whole picture at once.
package gate

import (
	"fmt"

	"github.com/bailiff-dev/bailiff/internal/judge"
	"github.com/bailiff-dev/bailiff/internal/pattern"
	"github.com/bailiff-dev/bailiff/internal/scoring"
)

// DefaultThreshold is the combined score required to pass review.
const DefaultThreshold = 4.0

// Per-tactic floors. Critical and important tactics block below
// requiredTacticFloor; optional tactics below optionalTacticFloor are
// reported as informational issues and never block.
const (
	requiredTacticFloor = 4
	optionalTacticFloor = 3
)

// Thresholds configures the gate.
type Thresholds struct {
	// Overall is the combined score the evaluation must reach
	Overall float64

	// Strict fails evaluations that only equal the threshold
	Strict bool
}

// DefaultThresholds returns the standard gate configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{Overall: DefaultThreshold}
}

// TacticIssue describes a tactic that scored below its floor.
type TacticIssue struct {
	PatternName string           `json:"patternName"`
	TacticID    string           `json:"tacticId"`
	Title       string           `json:"title"`
	Priority    pattern.Priority `json:"priority"`
	Score       int              `json:"score"`
	Reasoning   string           `json:"reasoning,omitempty"`
}

// ConstraintIssue describes a failed constraint.
type ConstraintIssue struct {
	PatternName  string `json:"patternName"`
	ConstraintID string `json:"constraintId"`
	Rule         string `json:"rule"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// Issues buckets everything the gate found, including informational
// optional-tactic findings that never block.
type Issues struct {
	Critical           []TacticIssue     `json:"critical,omitempty"`
	Important          []TacticIssue     `json:"important,omitempty"`
	Optional           []TacticIssue     `json:"optional,omitempty"`
	ConstraintFailures []ConstraintIssue `json:"constraintFailures,omitempty"`
}

// Empty reports whether no issues of any kind were found.
func (i Issues) Empty() bool {
	return len(i.Critical) == 0 && len(i.Important) == 0 &&
		len(i.Optional) == 0 && len(i.ConstraintFailures) == 0
}

// Decision is the gate's verdict over one evaluation.
type Decision struct {
	Passed        bool     `json:"passed"`
	CombinedScore float64  `json:"combinedScore"`
	Threshold     float64  `json:"threshold"`
	Reasons       []string `json:"reasons,omitempty"`
	Issues        Issues   `json:"issues"`
}

// Recommendations flattens the collected issues into actionable
// one-line suggestions, blocking problems first: critical tactics,
// important tactics, failed constraints, then informational
// optional-tactic findings.
func (d Decision) Recommendations() []string {
	var recs []string

	tactic := func(issue TacticIssue, verb string) string {
		name := issue.Title
		if name == "" {
			name = issue.TacticID
		}
		rec := fmt.Sprintf("%s: %s %q (scored %d/5)", issue.PatternName, verb, name, issue.Score)
		if issue.Reasoning != "" {
			rec += ": " + issue.Reasoning
		}
		return rec
	}

	for _, issue := range d.Issues.Critical {
		recs = append(recs, tactic(issue, "improve"))
	}
	for _, issue := range d.Issues.Important {
		recs = append(recs, tactic(issue, "improve"))
	}
	for _, issue := range d.Issues.ConstraintFailures {
		rec := fmt.Sprintf("%s: satisfy constraint %q: %s", issue.PatternName, issue.ConstraintID, issue.Rule)
		if issue.Reasoning != "" {
			rec += " (" + issue.Reasoning + ")"
		}
		recs = append(recs, rec)
	}
	for _, issue := range d.Issues.Optional {
		recs = append(recs, tactic(issue, "consider improving"))
	}
	return recs
}

// Evaluate gates the scored patterns. The evaluation fails when any of
// the following hold: the combined score is below the threshold (or
// merely equals it under Strict), a critical or important tactic scored
// below its floor, or any constraint FAILed. Not-applicable tactics are
// skipped by every check.
func Evaluate(scores []scoring.PatternScore, t Thresholds) Decision {
	d := Decision{
		CombinedScore: scoring.Combined(scores),
		Threshold:     t.Overall,
	}

	if t.Strict {
		if d.CombinedScore <= t.Overall {
			d.Reasons = append(d.Reasons, fmt.Sprintf(
				"combined score %.2f does not exceed strict threshold %.2f", d.CombinedScore, t.Overall))
		}
	} else if d.CombinedScore < t.Overall {
		d.Reasons = append(d.Reasons, fmt.Sprintf(
			"combined score %.2f below threshold %.2f", d.CombinedScore, t.Overall))
	}

	for _, ps := range scores {
		for _, ts := range ps.Tactics {
			if !ts.Applicable() {
				continue
			}

			issue := TacticIssue{
				PatternName: ps.PatternName,
				TacticID:    ts.TacticID,
				Title:       ts.Title,
				Priority:    ts.Priority,
				Score:       ts.Score,
				Reasoning:   ts.Reasoning,
			}

			switch ts.Priority {
			case pattern.PriorityCritical:
				if ts.Score < requiredTacticFloor {
					d.Issues.Critical = append(d.Issues.Critical, issue)
					d.Reasons = append(d.Reasons, fmt.Sprintf(
						"critical tactic %q scored %d, floor is %d", ts.TacticID, ts.Score, requiredTacticFloor))
				}
			case pattern.PriorityImportant:
				if ts.Score < requiredTacticFloor {
					d.Issues.Important = append(d.Issues.Important, issue)
					d.Reasons = append(d.Reasons, fmt.Sprintf(
						"important tactic %q scored %d, floor is %d", ts.TacticID, ts.Score, requiredTacticFloor))
				}
			case pattern.PriorityOptional:
				// Informational only, never blocks.
				if ts.Score < optionalTacticFloor {
					d.Issues.Optional = append(d.Issues.Optional, issue)
				}
			}
		}

		for _, cr := range ps.Constraints {
			if cr.Verdict != judge.VerdictFail {
				continue
			}
			d.Issues.ConstraintFailures = append(d.Issues.ConstraintFailures, ConstraintIssue{
				PatternName:  ps.PatternName,
				ConstraintID: cr.ConstraintID,
				Rule:         cr.Rule,
				Reasoning:    cr.Reasoning,
			})
			d.Reasons = append(d.Reasons, fmt.Sprintf(
				"constraint %q failed: %s", cr.ConstraintID, cr.Rule))
		}
	}

	d.Passed = len(d.Reasons) == 0
	return d
}
