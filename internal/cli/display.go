package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bailiff-dev/bailiff/internal/cycle"
	"github.com/bailiff-dev/bailiff/internal/judge"
	"github.com/bailiff-dev/bailiff/internal/review"
	"github.com/bailiff-dev/bailiff/internal/scoring"
)

// StatusSymbol returns the glyph for a layer status
func StatusSymbol(s cycle.Status) string {
	switch s {
	case cycle.StatusPassed:
		return "✓"
	case cycle.StatusSkipped:
		return "→"
	case cycle.StatusEscalated:
		return "‼"
	case cycle.StatusAborted:
		return "✗"
	case cycle.StatusQueued:
		return "○"
	default:
		return "●"
	}
}

// RenderScoreBar renders a 0-5 score as a fixed-width bar
func RenderScoreBar(score float64, width int) string {
	if width <= 0 {
		return ""
	}
	if score < 0 {
		score = 0
	}
	if score > 5 {
		score = 5
	}

	filled := int(score / 5 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// PrintRunSummary writes the per-layer outcomes and run totals
func PrintRunSummary(w io.Writer, result *cycle.Result) {
	if result == nil {
		return
	}

	fmt.Fprintf(w, "\nRun %s:\n", result.RunID)
	for _, st := range result.States {
		fmt.Fprintf(w, "  %s %-16s %s\n", StatusSymbol(st.Status), st.Layer, describeLayer(st))
	}

	fmt.Fprintf(w, "\n  Layers:     %d\n", result.TotalLayers)
	fmt.Fprintf(w, "  Passed:     %d\n", result.PassedLayers)
	fmt.Fprintf(w, "  Skipped:    %d\n", result.SkippedLayers)
	fmt.Fprintf(w, "  Escalated:  %d\n", result.EscalatedLayers)
	fmt.Fprintf(w, "  Duration:   %s\n", result.Duration.Round(time.Millisecond))
	if result.Aborted {
		fmt.Fprintln(w, "\n  Run aborted by operator.")
	}
}

func describeLayer(st cycle.LayerState) string {
	parts := []string{string(st.Status)}
	if st.IterationCount > 0 {
		parts = append(parts, fixCount(st.IterationCount))
	}
	if st.LastResult != nil {
		parts = append(parts, fmt.Sprintf("score %.2f", st.LastResult.CombinedScore))
	}
	return strings.Join(parts, ", ")
}

func fixCount(n int) string {
	if n == 1 {
		return "1 fix"
	}
	return fmt.Sprintf("%d fixes", n)
}

// PrintReviewReport writes a full evaluation report: per-pattern scores
// with tactic and constraint detail, the gate decision, and any
// recommendations the decision produced.
func PrintReviewReport(w io.Writer, result *review.Result) {
	fmt.Fprintf(w, "Review of %s (%d patterns, %d passes, %s)\n\n",
		result.Target, len(result.Patterns), result.Passes, result.Duration.Round(time.Millisecond))

	for _, ev := range result.Patterns {
		score := ev.Score
		fmt.Fprintf(w, "%s %s  %.2f/5\n", RenderScoreBar(score.OverallScore, 20), score.PatternName, score.OverallScore)

		for _, t := range score.Tactics {
			if !t.Applicable() {
				fmt.Fprintf(w, "     -  [%s] %s: not applicable\n", t.Priority, tacticTitle(t))
				continue
			}
			fmt.Fprintf(w, "    %d/5 [%s] %s\n", t.Score, t.Priority, tacticTitle(t))
		}
		for _, con := range score.Constraints {
			fmt.Fprintf(w, "    %s %s\n", constraintGlyph(con.Verdict), con.Rule)
			if con.ExceptionUsed != "" {
				fmt.Fprintf(w, "        exception: %s\n", con.ExceptionUsed)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Combined score: %.2f (threshold %.2f)\n", result.CombinedScore, result.Decision.Threshold)
	if result.Passed() {
		fmt.Fprintln(w, "Gate: PASS")
	} else {
		fmt.Fprintln(w, "Gate: FAIL")
		for _, reason := range result.Decision.Reasons {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
}

func tacticTitle(t scoring.TacticScore) string {
	if t.Title != "" {
		return t.Title
	}
	return t.TacticID
}

func constraintGlyph(v judge.ConstraintVerdict) string {
	switch v {
	case judge.VerdictPass:
		return "✓"
	case judge.VerdictExceptionAllowed:
		return "≈"
	default:
		return "✗"
	}
}
