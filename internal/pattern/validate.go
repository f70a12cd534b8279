package pattern

import (
	"errors"
	"fmt"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pattern.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// Validate checks the pattern declaration for structural problems.
// Returns nil if valid, or joined errors for all validation failures.
func (p *Pattern) Validate() error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, &ValidationError{
			Field:   "name",
			Value:   p.Name,
			Message: "must not be empty",
		})
	}

	if len(p.Tactics) == 0 && len(p.Constraints) == 0 {
		errs = append(errs, &ValidationError{
			Field:   "tactics",
			Value:   0,
			Message: "pattern must declare at least one tactic or constraint",
		})
	}

	seenTactics := make(map[string]bool)
	for i, t := range p.Tactics {
		field := fmt.Sprintf("tactics[%d]", i)

		if t.ID == "" {
			errs = append(errs, &ValidationError{
				Field:   field + ".id",
				Value:   t.ID,
				Message: "must not be empty",
			})
		} else if seenTactics[t.ID] {
			errs = append(errs, &ValidationError{
				Field:   field + ".id",
				Value:   t.ID,
				Message: "duplicate tactic id",
			})
		}
		seenTactics[t.ID] = true

		if t.Title == "" {
			errs = append(errs, &ValidationError{
				Field:   field + ".title",
				Value:   t.Title,
				Message: "must not be empty",
			})
		}

		if !t.Priority.Valid() {
			errs = append(errs, &ValidationError{
				Field:   field + ".priority",
				Value:   string(t.Priority),
				Message: "must be critical, important, or optional",
			})
		}

		for level := range t.Rubric {
			if level < 0 || level > 5 {
				errs = append(errs, &ValidationError{
					Field:   fmt.Sprintf("%s.rubric[%d]", field, level),
					Value:   level,
					Message: "rubric level must be between 0 and 5",
				})
			}
		}

		// Judge calibration depends on a full set of anchors, whether
		// declared inline or merged from the calibration sibling.
		var missing []int
		for level := 0; level <= 5; level++ {
			if t.Rubric[level] == "" {
				missing = append(missing, level)
			}
		}
		if len(missing) > 0 {
			errs = append(errs, &ValidationError{
				Field:   field + ".rubric",
				Value:   missing,
				Message: "missing calibration anchors for scores 0-5",
			})
		}
	}

	seenConstraints := make(map[string]bool)
	for i, c := range p.Constraints {
		field := fmt.Sprintf("constraints[%d]", i)

		if c.ID == "" {
			errs = append(errs, &ValidationError{
				Field:   field + ".id",
				Value:   c.ID,
				Message: "must not be empty",
			})
		} else if seenConstraints[c.ID] {
			errs = append(errs, &ValidationError{
				Field:   field + ".id",
				Value:   c.ID,
				Message: "duplicate constraint id",
			})
		}
		seenConstraints[c.ID] = true

		if c.Rule == "" {
			errs = append(errs, &ValidationError{
				Field:   field + ".rule",
				Value:   c.Rule,
				Message: "must not be empty",
			})
		}

		if c.Mode != "" && !c.Mode.Valid() {
			errs = append(errs, &ValidationError{
				Field:   field + ".mode",
				Value:   string(c.Mode),
				Message: "must be judge or deterministic",
			})
		}
	}

	return errors.Join(errs...)
}
