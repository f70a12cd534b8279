package scoring

import (
	"fmt"

	"github.com/bailiff-dev/bailiff/internal/judge"
	"github.com/bailiff-dev/bailiff/internal/pattern"
)

// Score blend: tactics carry 70% of the overall score, constraint
// compliance the remaining 30% (full marks when nothing FAILs).
const (
	tacticsShare     = 0.7
	constraintsShare = 0.3
	compliancePoints = 5.0
)

// NoApplicableTacticsError is returned when every tactic of a pattern
// was judged not applicable, leaving the weighted score undefined.
type NoApplicableTacticsError struct {
	PatternName string
}

func (e *NoApplicableTacticsError) Error() string {
	return fmt.Sprintf("pattern %q has no applicable tactics to score", e.PatternName)
}

// TacticScore is one tactic's contribution to a pattern score.
type TacticScore struct {
	TacticID  string           `json:"tacticId"`
	Title     string           `json:"title"`
	Priority  pattern.Priority `json:"priority"`
	Score     int              `json:"score"`
	Weight    float64          `json:"weight"`
	Reasoning string           `json:"reasoning,omitempty"`
}

// Applicable reports whether the tactic counted toward the score.
func (t TacticScore) Applicable() bool {
	return t.Score != judge.ScoreNotApplicable
}

// ConstraintResult is one constraint's outcome within a pattern score.
type ConstraintResult struct {
	ConstraintID  string                  `json:"constraintId"`
	Rule          string                  `json:"rule"`
	Verdict       judge.ConstraintVerdict `json:"verdict"`
	Reasoning     string                  `json:"reasoning,omitempty"`
	ExceptionUsed string                  `json:"exceptionUsed,omitempty"`
}

// PatternScore is the scored outcome of one pattern evaluation.
type PatternScore struct {
	PatternName       string             `json:"patternName"`
	TacticsScore      float64            `json:"tacticsScore"`
	ConstraintsPassed bool               `json:"constraintsPassed"`
	OverallScore      float64            `json:"overallScore"`
	Tactics           []TacticScore      `json:"tactics"`
	Constraints       []ConstraintResult `json:"constraints"`
}

// Score computes a pattern's score from an aggregated judgment.
//
// TacticsScore is the priority-weighted mean over applicable tactics:
// sum(score*weight)/sum(weight), skipping scores of -1. OverallScore
// blends that with constraint compliance: 70% tactics, 30% of full
// marks when no constraint FAILed (EXCEPTION_ALLOWED counts as
// compliant). Scoring is pure: the same judgment always produces the
// same score.
func Score(p *pattern.Pattern, pass *judge.JudgmentPass) (*PatternScore, error) {
	result := &PatternScore{PatternName: p.Name}

	var weightedSum, weightTotal float64
	for _, t := range p.Tactics {
		tj, ok := pass.Tactic(t.ID)
		if !ok {
			return nil, fmt.Errorf("judgment missing tactic %q", t.ID)
		}

		ts := TacticScore{
			TacticID:  t.ID,
			Title:     t.Title,
			Priority:  t.Priority,
			Score:     tj.Score,
			Weight:    t.Priority.Weight(),
			Reasoning: tj.Reasoning,
		}
		result.Tactics = append(result.Tactics, ts)

		if !ts.Applicable() {
			continue
		}
		weightedSum += float64(tj.Score) * ts.Weight
		weightTotal += ts.Weight
	}

	if weightTotal == 0 {
		return nil, &NoApplicableTacticsError{PatternName: p.Name}
	}
	result.TacticsScore = weightedSum / weightTotal

	result.ConstraintsPassed = true
	for _, c := range p.Constraints {
		cj, ok := pass.Constraint(c.ID)
		if !ok {
			return nil, fmt.Errorf("judgment missing constraint %q", c.ID)
		}

		result.Constraints = append(result.Constraints, ConstraintResult{
			ConstraintID:  c.ID,
			Rule:          c.Rule,
			Verdict:       cj.Verdict,
			Reasoning:     cj.Reasoning,
			ExceptionUsed: cj.ExceptionUsed,
		})

		if cj.Verdict == judge.VerdictFail {
			result.ConstraintsPassed = false
		}
	}

	compliance := 0.0
	if result.ConstraintsPassed {
		compliance = compliancePoints
	}
	result.OverallScore = result.TacticsScore*tacticsShare + compliance*constraintsShare

	return result, nil
}

// Combined returns the unweighted mean of the patterns' overall scores.
// Multi-pattern evaluations gate on this value.
func Combined(scores []PatternScore) float64 {
	if len(scores) == 0 {
		return 0
	}

	var sum float64
	for _, s := range scores {
		sum += s.OverallScore
	}
	return sum / float64(len(scores))
}
