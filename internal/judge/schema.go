package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bailiff-dev/bailiff/internal/pattern"
)

// SchemaError represents a validation failure in a judge response.
type SchemaError struct {
	Field   string
	Message string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("schema validation failed: %s - %s", e.Field, e.Message)
}

// ResponseError wraps any failure to turn raw judge output into a valid
// JudgmentPass. Raw preserves the full output for diagnosis.
type ResponseError struct {
	Gateway string
	Raw     string
	Err     error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("invalid judge response from %s: %v", e.Gateway, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// rawPass mirrors JudgmentPass with pointer fields so missing keys are
// distinguishable from zero values during validation.
type rawPass struct {
	Tactics []struct {
		TacticID  string `json:"tacticId"`
		Score     *int   `json:"score"`
		Reasoning string `json:"reasoning"`
	} `json:"tactics"`
	Constraints []struct {
		ConstraintID  string `json:"constraintId"`
		Verdict       string `json:"verdict"`
		Reasoning     string `json:"reasoning"`
		ExceptionUsed string `json:"exceptionUsed"`
	} `json:"constraints"`
	OverallReasoning string `json:"overallReasoning"`
}

// ParseAndValidate parses raw judge output and validates it against the
// pattern's declared tactics and constraints. Every declared ID must be
// judged exactly once; undeclared IDs are rejected. Responses are never
// repaired: any violation fails the whole pass.
func ParseAndValidate(output string, p *pattern.Pattern) (*JudgmentPass, error) {
	jsonStr := ExtractJSON(output)
	if jsonStr == "" {
		return nil, SchemaError{Field: "json", Message: "no JSON object found in output"}
	}

	var raw rawPass
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, SchemaError{Field: "json", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	pass := &JudgmentPass{OverallReasoning: raw.OverallReasoning}

	seenTactics := make(map[string]bool)
	for i, t := range raw.Tactics {
		field := fmt.Sprintf("tactics[%d]", i)

		if t.TacticID == "" {
			return nil, SchemaError{Field: field + ".tacticId", Message: "tacticId is required"}
		}
		if _, declared := p.TacticByID(t.TacticID); !declared {
			return nil, SchemaError{Field: field + ".tacticId", Message: fmt.Sprintf("judgment for undeclared tactic %q", t.TacticID)}
		}
		if seenTactics[t.TacticID] {
			return nil, SchemaError{Field: field + ".tacticId", Message: fmt.Sprintf("tactic %q judged more than once", t.TacticID)}
		}
		seenTactics[t.TacticID] = true

		if t.Score == nil {
			return nil, SchemaError{Field: field + ".score", Message: "score is required"}
		}
		if *t.Score != ScoreNotApplicable && (*t.Score < MinScore || *t.Score > MaxScore) {
			return nil, SchemaError{Field: field + ".score", Message: fmt.Sprintf("score must be -1 or between %d and %d, got: %d", MinScore, MaxScore, *t.Score)}
		}

		pass.Tactics = append(pass.Tactics, TacticJudgment{
			TacticID:  t.TacticID,
			Score:     *t.Score,
			Reasoning: t.Reasoning,
		})
	}

	for _, id := range p.TacticIDs() {
		if !seenTactics[id] {
			return nil, SchemaError{Field: "tactics", Message: fmt.Sprintf("missing judgment for tactic %q", id)}
		}
	}

	seenConstraints := make(map[string]bool)
	for i, c := range raw.Constraints {
		field := fmt.Sprintf("constraints[%d]", i)

		if c.ConstraintID == "" {
			return nil, SchemaError{Field: field + ".constraintId", Message: "constraintId is required"}
		}
		declared, ok := p.ConstraintByID(c.ConstraintID)
		if !ok {
			return nil, SchemaError{Field: field + ".constraintId", Message: fmt.Sprintf("judgment for undeclared constraint %q", c.ConstraintID)}
		}
		if seenConstraints[c.ConstraintID] {
			return nil, SchemaError{Field: field + ".constraintId", Message: fmt.Sprintf("constraint %q judged more than once", c.ConstraintID)}
		}
		seenConstraints[c.ConstraintID] = true

		verdict := ConstraintVerdict(c.Verdict)
		if !verdict.Valid() {
			return nil, SchemaError{Field: field + ".verdict", Message: fmt.Sprintf("must be PASS, FAIL, or EXCEPTION_ALLOWED, got: %s", c.Verdict)}
		}

		if c.ExceptionUsed != "" && !declaresException(declared, c.ExceptionUsed) {
			return nil, SchemaError{Field: field + ".exceptionUsed", Message: fmt.Sprintf("%q is not a declared exception of constraint %q", c.ExceptionUsed, c.ConstraintID)}
		}

		pass.Constraints = append(pass.Constraints, ConstraintJudgment{
			ConstraintID:  c.ConstraintID,
			Verdict:       verdict,
			Reasoning:     c.Reasoning,
			ExceptionUsed: c.ExceptionUsed,
		})
	}

	for _, id := range p.ConstraintIDs() {
		if !seenConstraints[id] {
			return nil, SchemaError{Field: "constraints", Message: fmt.Sprintf("missing judgment for constraint %q", id)}
		}
	}

	return pass, nil
}

func declaresException(c pattern.Constraint, exception string) bool {
	for _, e := range c.Exceptions {
		if e == exception {
			return true
		}
	}
	return false
}

// ExtractJSON finds and returns the first JSON object in the output.
// Handles JSON in markdown code fences and bare JSON.
// Returns empty string if no valid JSON found.
func ExtractJSON(output string) string {
	if jsonStr := extractJSONFromCodeFence(output); jsonStr != "" {
		return jsonStr
	}
	return extractJSONByBraces(output)
}

// extractJSONFromCodeFence extracts JSON from markdown code fences.
// Looks for ```json or ``` followed by JSON content.
func extractJSONFromCodeFence(output string) string {
	markers := []string{"```json\n", "```\n"}
	for _, marker := range markers {
		start := strings.Index(output, marker)
		if start == -1 {
			continue
		}
		contentStart := start + len(marker)
		end := strings.Index(output[contentStart:], "```")
		if end == -1 {
			continue
		}
		content := strings.TrimSpace(output[contentStart : contentStart+end])
		if strings.HasPrefix(content, "{") {
			return content
		}
	}
	return ""
}

// extractJSONByBraces finds JSON by matching braces.
// Scans for first { and tracks depth until matching } found.
func extractJSONByBraces(output string) string {
	start := -1
	depth := 0

	for i, ch := range output {
		if ch == '{' {
			if start == -1 {
				start = i
			}
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 && start != -1 {
				return output[start : i+1]
			}
		}
	}

	return ""
}
