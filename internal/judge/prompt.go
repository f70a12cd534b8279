package judge

import (
	"fmt"
	"sort"
	"strings"
)

// BuildPrompt renders the evaluation prompt for one pattern. The
// pattern's tactics (with rubric anchors), constraints (with declared
// exceptions), and the code under review are inlined, followed by the
// exact JSON schema the response must satisfy.
func BuildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are scoring code against the architectural pattern %q.\n", req.Pattern.Name)
	if req.Pattern.Description != "" {
		fmt.Fprintf(&b, "\nPattern intent: %s\n", strings.TrimSpace(req.Pattern.Description))
	}
	if req.Pattern.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", strings.TrimSpace(req.Pattern.Goal))
	}
	if req.Pattern.GuidingPolicy != "" {
		fmt.Fprintf(&b, "Guiding policy: %s\n", strings.TrimSpace(req.Pattern.GuidingPolicy))
	}

	b.WriteString("\n## Tactics\n")
	b.WriteString("Score each tactic from 0 (absent) to 5 (exemplary).\n")
	b.WriteString("Use -1 only when the tactic genuinely does not apply to this code.\n")
	for _, t := range req.Pattern.Tactics {
		fmt.Fprintf(&b, "\n- id: %s\n  title: %s\n  priority: %s\n", t.ID, t.Title, t.Priority)
		if t.Description != "" {
			fmt.Fprintf(&b, "  description: %s\n", strings.TrimSpace(t.Description))
		}
		if len(t.Rubric) > 0 {
			b.WriteString("  calibration:\n")
			levels := make([]int, 0, len(t.Rubric))
			for level := range t.Rubric {
				levels = append(levels, level)
			}
			sort.Sort(sort.Reverse(sort.IntSlice(levels)))
			for _, level := range levels {
				fmt.Fprintf(&b, "    %d: %s\n", level, t.Rubric[level])
			}
		}
	}

	if len(req.Pattern.Constraints) > 0 {
		b.WriteString("\n## Constraints\n")
		b.WriteString("Rule each constraint PASS or FAIL. If a declared exception applies,\n")
		b.WriteString("rule EXCEPTION_ALLOWED and set exceptionUsed to the exception text verbatim.\n")
		for _, c := range req.Pattern.Constraints {
			fmt.Fprintf(&b, "\n- id: %s\n  rule: %s\n  mode: %s\n", c.ID, c.Rule, c.Mode)
			if c.Description != "" {
				fmt.Fprintf(&b, "  description: %s\n", strings.TrimSpace(c.Description))
			}
			for _, e := range c.Exceptions {
				fmt.Fprintf(&b, "  exception: %s\n", e)
			}
		}
	}

	if req.PlanContext != "" {
		b.WriteString("\n## Feature context\n")
		b.WriteString(strings.TrimSpace(req.PlanContext))
		b.WriteString("\n")
	}

	b.WriteString("\n## Code under review\n")
	fmt.Fprintf(&b, "Target: %s\n", req.TargetPath)
	if req.Diff != "" {
		b.WriteString("\n### Diff\n```diff\n")
		b.WriteString(req.Diff)
		b.WriteString("\n```\n")
	}
	if len(req.Files) > 0 {
		paths := make([]string, 0, len(req.Files))
		for p := range req.Files {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Fprintf(&b, "\n### %s\n```\n%s\n```\n", p, req.Files[p])
		}
	}

	b.WriteString(`
Output your judgment as JSON in this exact format, with one entry per
declared tactic id and one per declared constraint id, nothing extra:
{
  "tactics": [
    {"tacticId": "<id>", "score": 0-5 or -1, "reasoning": "why this score"}
  ],
  "constraints": [
    {"constraintId": "<id>", "verdict": "PASS|FAIL|EXCEPTION_ALLOWED", "reasoning": "why", "exceptionUsed": "declared exception text, only with EXCEPTION_ALLOWED"}
  ],
  "overallReasoning": "one-paragraph summary of how well the code follows the pattern"
}`)

	return b.String()
}
