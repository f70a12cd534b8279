package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bailiff-dev/bailiff/internal/gate"
	"github.com/bailiff-dev/bailiff/internal/review"
)

func TestBuildImplementPrompt(t *testing.T) {
	prompt := BuildImplementPrompt("billing", "Add invoice totals.\n", domainLayer())

	assert.Contains(t, prompt, `implementing the "domain" layer of "billing"`)
	assert.Contains(t, prompt, "## Feature Brief")
	assert.Contains(t, prompt, "Add invoice totals.")
	assert.Contains(t, prompt, "### hexagonal-core")
	assert.Contains(t, prompt, "Domain logic stays behind ports.")
	assert.Contains(t, prompt, "- [critical] Define ports before adapters")
	assert.Contains(t, prompt, "- MUST: domain packages must not perform IO")
	assert.Contains(t, prompt, "Leave all changes uncommitted")
	assert.Contains(t, prompt, "do not start other layers")
	assert.Contains(t, prompt, "NEVER run tests in watch mode")
}

func TestBuildImplementPromptMultiplePatterns(t *testing.T) {
	spec := domainLayer()
	spec.Patterns = append(spec.Patterns, apiLayer().Patterns...)

	prompt := BuildImplementPrompt("billing", "brief", spec)

	assert.Contains(t, prompt, "### hexagonal-core")
	assert.Contains(t, prompt, "### transport-consistency")
	assert.Contains(t, prompt, "- [important] Map errors to uniform responses")
}

func TestBuildPlanContext(t *testing.T) {
	got := BuildPlanContext("billing", "domain", "Add invoice totals.\n")

	assert.Equal(t, "Feature: billing\nLayer under review: domain\n\nAdd invoice totals.\n", got)
}

func TestBuildPlanContextWithoutFeatureOrBrief(t *testing.T) {
	assert.Equal(t, "Layer under review: domain\n", BuildPlanContext("", "domain", ""))
}

func TestBuildFixPrompt(t *testing.T) {
	result := &review.Result{
		CombinedScore: 3.12,
		Decision: gate.Decision{
			CombinedScore: 3.12,
			Threshold:     4.0,
			Reasons: []string{
				"combined score 3.12 below threshold 4.00",
				"critical tactic ports-first scored 2/5",
			},
			Issues: gate.Issues{
				Critical: []gate.TacticIssue{{
					PatternName: "hexagonal-core",
					TacticID:    "ports-first",
					Title:       "Define ports before adapters",
					Score:       2,
					Reasoning:   "the repository talks to the database from the domain",
				}},
				Important: []gate.TacticIssue{{
					PatternName: "hexagonal-core",
					TacticID:    "thin-adapters",
					Score:       3,
				}},
				ConstraintFailures: []gate.ConstraintIssue{{
					PatternName:  "hexagonal-core",
					ConstraintID: "no-io-in-domain",
					Rule:         "domain packages must not perform IO",
					Reasoning:    "invoice.go opens a file",
				}},
			},
		},
	}

	prompt := BuildFixPrompt("domain", 2, 3, result)

	assert.Contains(t, prompt, `Review of the "domain" layer failed at score 3.12 (threshold 4.00)`)
	assert.Contains(t, prompt, "This is fix attempt 2 of 3.")
	assert.Contains(t, prompt, "## Why the Gate Failed")
	assert.Contains(t, prompt, "1. combined score 3.12 below threshold 4.00")
	assert.Contains(t, prompt, "2. critical tactic ports-first scored 2/5")
	assert.Contains(t, prompt, "## Critical Tactic Issues")
	assert.Contains(t, prompt, "### hexagonal-core: Define ports before adapters (scored 2/5)")
	assert.Contains(t, prompt, "the repository talks to the database from the domain")
	assert.Contains(t, prompt, "## Important Tactic Issues")
	// Issues without a title fall back to the tactic id.
	assert.Contains(t, prompt, "### hexagonal-core: thin-adapters (scored 3/5)")
	assert.Contains(t, prompt, "## Constraint Violations")
	assert.Contains(t, prompt, "### hexagonal-core: domain packages must not perform IO")
	assert.Contains(t, prompt, "invoice.go opens a file")
	assert.Contains(t, prompt, "Address the critical issues first")
	assert.Contains(t, prompt, "Make minimal changes needed to resolve the issues.")
}

func TestBuildFixPromptWithoutIssueDetail(t *testing.T) {
	result := &review.Result{
		CombinedScore: 3.9,
		Decision: gate.Decision{
			CombinedScore: 3.9,
			Threshold:     4.0,
			Reasons:       []string{"combined score 3.90 below threshold 4.00"},
		},
	}

	prompt := BuildFixPrompt("api", 1, 3, result)

	assert.Contains(t, prompt, "This is fix attempt 1 of 3.")
	assert.Contains(t, prompt, "1. combined score 3.90 below threshold 4.00")
	assert.NotContains(t, prompt, "Tactic Issues")
	assert.NotContains(t, prompt, "Constraint Violations")
	assert.Contains(t, prompt, "Leave all changes uncommitted")
}
