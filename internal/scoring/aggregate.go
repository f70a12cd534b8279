// Package scoring turns non-deterministic judge passes into stable
// numbers: multiple passes are aggregated into a single judgment, and
// judgments are scored against their pattern's weights.
package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bailiff-dev/bailiff/internal/judge"
)

// ErrEmptyPassList is returned when Aggregate receives no passes.
var ErrEmptyPassList = errors.New("cannot aggregate an empty pass list")

// InconsistentPassesError reports passes that do not judge the same
// tactic or constraint set. Aggregating across mismatched passes would
// silently bias the medians, so this is a hard precondition.
type InconsistentPassesError struct {
	// PassIndex is the 0-based index of the offending pass
	PassIndex int

	// Field is "tactics" or "constraints"
	Field string

	Want []string
	Got  []string
}

func (e *InconsistentPassesError) Error() string {
	return fmt.Sprintf("pass %d judges different %s: want %v, got %v",
		e.PassIndex, e.Field, e.Want, e.Got)
}

// Aggregate collapses repeated judge passes over the same pattern into
// one judgment. Tactic scores take the median per tactic (lower median
// on even counts); scores of -1 are excluded, and a tactic every pass
// marked -1 stays -1. Constraint verdicts take the majority vote, with
// ties resolved fail-closed: FAIL beats EXCEPTION_ALLOWED beats PASS.
//
// Aggregation is deterministic: the same passes in the same order
// always produce the same judgment. Reasoning is carried from the
// first pass whose value matches the aggregate.
func Aggregate(passes []judge.JudgmentPass) (*judge.JudgmentPass, error) {
	if len(passes) == 0 {
		return nil, ErrEmptyPassList
	}

	ref := passes[0]
	refTactics := tacticIDs(ref)
	refConstraints := constraintIDs(ref)

	for i := 1; i < len(passes); i++ {
		got := tacticIDs(passes[i])
		if !sameIDSet(refTactics, got) {
			return nil, &InconsistentPassesError{PassIndex: i, Field: "tactics", Want: refTactics, Got: got}
		}
		got = constraintIDs(passes[i])
		if !sameIDSet(refConstraints, got) {
			return nil, &InconsistentPassesError{PassIndex: i, Field: "constraints", Want: refConstraints, Got: got}
		}
	}

	out := &judge.JudgmentPass{OverallReasoning: ref.OverallReasoning}

	for _, id := range refTactics {
		var scores []int
		for _, p := range passes {
			t, _ := p.Tactic(id)
			if t.Score != judge.ScoreNotApplicable {
				scores = append(scores, t.Score)
			}
		}

		agg := judge.TacticJudgment{TacticID: id}
		if len(scores) == 0 {
			// Every pass found the tactic not applicable.
			first, _ := ref.Tactic(id)
			agg.Score = judge.ScoreNotApplicable
			agg.Reasoning = first.Reasoning
		} else {
			agg.Score = lowerMedian(scores)
			agg.Reasoning = firstTacticReasoning(passes, id, agg.Score)
		}
		out.Tactics = append(out.Tactics, agg)
	}

	for _, id := range refConstraints {
		votes := make(map[judge.ConstraintVerdict]int)
		for _, p := range passes {
			c, _ := p.Constraint(id)
			votes[c.Verdict]++
		}

		winner := majorityVerdict(votes)
		agg := judge.ConstraintJudgment{ConstraintID: id, Verdict: winner}
		for _, p := range passes {
			c, _ := p.Constraint(id)
			if c.Verdict != winner {
				continue
			}
			if agg.Reasoning == "" {
				agg.Reasoning = c.Reasoning
			}
			if agg.ExceptionUsed == "" && c.ExceptionUsed != "" {
				agg.ExceptionUsed = c.ExceptionUsed
			}
		}
		out.Constraints = append(out.Constraints, agg)
	}

	return out, nil
}

// lowerMedian returns the median of scores, taking the lower of the two
// middle values when the count is even.
func lowerMedian(scores []int) int {
	sorted := make([]int, len(scores))
	copy(sorted, scores)
	sort.Ints(sorted)
	return sorted[(len(sorted)-1)/2]
}

// majorityVerdict picks the verdict with the most votes. Candidates
// are checked worst-first so a tie resolves fail-closed: FAIL beats
// EXCEPTION_ALLOWED beats PASS among the tied leaders.
func majorityVerdict(votes map[judge.ConstraintVerdict]int) judge.ConstraintVerdict {
	best := judge.VerdictPass
	bestCount := -1
	for _, v := range []judge.ConstraintVerdict{judge.VerdictFail, judge.VerdictExceptionAllowed, judge.VerdictPass} {
		count := votes[v]
		if count > bestCount {
			best = v
			bestCount = count
		}
	}
	return best
}

func firstTacticReasoning(passes []judge.JudgmentPass, id string, score int) string {
	for _, p := range passes {
		t, _ := p.Tactic(id)
		if t.Score == score {
			return t.Reasoning
		}
	}
	return ""
}

func tacticIDs(p judge.JudgmentPass) []string {
	ids := make([]string, 0, len(p.Tactics))
	for _, t := range p.Tactics {
		ids = append(ids, t.TacticID)
	}
	return ids
}

func constraintIDs(p judge.JudgmentPass) []string {
	ids := make([]string, 0, len(p.Constraints))
	for _, c := range p.Constraints {
		ids = append(ids, c.ConstraintID)
	}
	return ids
}

func sameIDSet(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	set := make(map[string]bool, len(want))
	for _, id := range want {
		set[id] = true
	}
	for _, id := range got {
		if !set[id] {
			return false
		}
	}
	return true
}
