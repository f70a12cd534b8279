package cycle

import (
	"fmt"
	"strings"

	"github.com/bailiff-dev/bailiff/internal/gate"
	"github.com/bailiff-dev/bailiff/internal/pattern"
	"github.com/bailiff-dev/bailiff/internal/review"
)

// BuildImplementPrompt constructs the implementer prompt for one layer.
func BuildImplementPrompt(feature, brief string, spec LayerSpec) string {
	var patterns strings.Builder
	for _, p := range spec.Patterns {
		fmt.Fprintf(&patterns, "### %s\n", p.Name)
		if p.Description != "" {
			fmt.Fprintf(&patterns, "%s\n", p.Description)
		}
		for _, t := range p.Tactics {
			fmt.Fprintf(&patterns, "- [%s] %s\n", t.Priority, t.Title)
		}
		for _, con := range p.Constraints {
			fmt.Fprintf(&patterns, "- MUST: %s\n", con.Rule)
		}
		patterns.WriteString("\n")
	}

	return fmt.Sprintf(`You are implementing the %q layer of %q. Follow these instructions exactly.

## Feature Brief

%s

## Patterns to Follow

Your work will be reviewed against these architectural patterns:

%s## Instructions
1. Implement the %q layer of the feature described above
2. Follow every pattern listed - they are scored, not advisory
3. Leave all changes uncommitted - the orchestrator stages and commits
4. Stop when the layer is complete; do not start other layers

## Critical
- Lines marked MUST are hard constraints; violating one fails the review
- Critical-priority tactics scoring below 4/5 fail the review regardless of averages
- Do not refactor unrelated code
- NEVER run tests in watch mode. Always use flags to run tests once and exit.
`,
		spec.Name,
		feature,
		strings.TrimSpace(brief),
		patterns.String(),
		spec.Name,
	)
}

// BuildPlanContext frames the judge's view of the work: the feature,
// the layer under review, and the plan brief.
func BuildPlanContext(feature, layer, brief string) string {
	var sb strings.Builder
	if feature != "" {
		fmt.Fprintf(&sb, "Feature: %s\n", feature)
	}
	fmt.Fprintf(&sb, "Layer under review: %s\n", layer)
	if brief = strings.TrimSpace(brief); brief != "" {
		sb.WriteString("\n")
		sb.WriteString(brief)
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildFixPrompt creates a prompt instructing the agent to fix a failed
// review, with every gate reason and issue inlined.
func BuildFixPrompt(layer string, iteration, maxIterations int, result *review.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Review of the %q layer failed at score %.2f (threshold %.2f). This is fix attempt %d of %d.\n\n",
		layer, result.CombinedScore, result.Decision.Threshold, iteration, maxIterations)

	sb.WriteString("## Why the Gate Failed\n\n")
	for i, reason := range result.Decision.Reasons {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, reason)
	}
	sb.WriteString("\n")

	writeTacticIssues(&sb, "Critical", result.Decision.Issues.Critical)
	writeTacticIssues(&sb, "Important", result.Decision.Issues.Important)
	writeConstraintIssues(&sb, result.Decision.Issues.ConstraintFailures)

	sb.WriteString("Address the critical issues first, then the important ones.\n")
	sb.WriteString("Make minimal changes needed to resolve the issues.\n")
	sb.WriteString("Leave all changes uncommitted - the orchestrator commits for you.\n")

	return sb.String()
}

func writeTacticIssues(sb *strings.Builder, heading string, issues []gate.TacticIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s Tactic Issues\n\n", heading)
	for _, issue := range issues {
		fmt.Fprintf(sb, "### %s: %s (scored %d/5)\n", issue.PatternName, title(issue), issue.Score)
		if issue.Reasoning != "" {
			fmt.Fprintf(sb, "%s\n", issue.Reasoning)
		}
		sb.WriteString("\n")
	}
}

func writeConstraintIssues(sb *strings.Builder, issues []gate.ConstraintIssue) {
	if len(issues) == 0 {
		return
	}
	sb.WriteString("## Constraint Violations\n\n")
	for _, issue := range issues {
		fmt.Fprintf(sb, "### %s: %s\n", issue.PatternName, issue.Rule)
		if issue.Reasoning != "" {
			fmt.Fprintf(sb, "%s\n", issue.Reasoning)
		}
		sb.WriteString("\n")
	}
}

// title falls back to the tactic id when the pattern declared no title.
func title(issue gate.TacticIssue) string {
	if issue.Title != "" {
		return issue.Title
	}
	return issue.TacticID
}

// patternNames is used by queue events and prompts listing a layer's patterns.
func patternNames(patterns []pattern.Pattern) []string {
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = p.Name
	}
	return names
}
