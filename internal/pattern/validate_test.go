package pattern

import (
	"errors"
	"strings"
	"testing"
)

func fullRubric() Rubric {
	return Rubric{
		0: "absent",
		1: "token effort",
		2: "inconsistent",
		3: "mostly there",
		4: "solid",
		5: "exemplary",
	}
}

func validPattern() *Pattern {
	return &Pattern{
		Name: "layered-architecture",
		Tactics: []Tactic{
			{ID: "dependency-direction", Title: "Dependencies point inward", Priority: PriorityCritical, Rubric: fullRubric()},
			{ID: "layer-cohesion", Title: "One layer per package", Priority: PriorityImportant, Rubric: fullRubric()},
		},
		Constraints: []Constraint{
			{ID: "no-sql-outside-storage", Rule: "SQL only in storage layer", Mode: ModeJudge},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validPattern().Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_EmptyName(t *testing.T) {
	p := validPattern()
	p.Name = ""

	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "pattern.name") {
		t.Errorf("expected error to name the field, got: %v", err)
	}
}

func TestValidate_NoTacticsOrConstraints(t *testing.T) {
	p := &Pattern{Name: "empty"}

	if err := p.Validate(); err == nil {
		t.Fatal("expected validation error for empty pattern")
	}
}

func TestValidate_DuplicateTacticID(t *testing.T) {
	p := validPattern()
	p.Tactics = append(p.Tactics, Tactic{ID: "dependency-direction", Title: "Dup", Priority: PriorityOptional})

	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "duplicate tactic id") {
		t.Errorf("expected duplicate tactic error, got: %v", err)
	}
}

func TestValidate_DuplicateConstraintID(t *testing.T) {
	p := validPattern()
	p.Constraints = append(p.Constraints, Constraint{ID: "no-sql-outside-storage", Rule: "dup"})

	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "duplicate constraint id") {
		t.Errorf("expected duplicate constraint error, got: %v", err)
	}
}

func TestValidate_BadPriority(t *testing.T) {
	p := validPattern()
	p.Tactics[0].Priority = "urgent"

	if err := p.Validate(); err == nil {
		t.Fatal("expected validation error for unknown priority")
	}
}

func TestValidate_RubricLevelOutOfRange(t *testing.T) {
	p := validPattern()
	p.Tactics[0].Rubric[6] = "too high"

	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error for rubric level 6")
	}
	if !strings.Contains(err.Error(), "between 0 and 5") {
		t.Errorf("expected range error, got: %v", err)
	}
}

func TestValidate_IncompleteRubric(t *testing.T) {
	p := validPattern()
	delete(p.Tactics[1].Rubric, 2)
	delete(p.Tactics[1].Rubric, 4)

	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error for incomplete rubric")
	}
	if !strings.Contains(err.Error(), "tactics[1].rubric") {
		t.Errorf("expected error to name the tactic, got: %v", err)
	}
	if !strings.Contains(err.Error(), "[2 4]") {
		t.Errorf("expected error to list the missing levels, got: %v", err)
	}
}

func TestValidate_BadMode(t *testing.T) {
	p := validPattern()
	p.Constraints[0].Mode = "static"

	if err := p.Validate(); err == nil {
		t.Fatal("expected validation error for unknown mode")
	}
}

func TestValidate_ReportsAllFailures(t *testing.T) {
	p := &Pattern{
		Name: "",
		Tactics: []Tactic{
			{ID: "", Title: "", Priority: "urgent"},
		},
	}

	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError in chain, got: %v", err)
	}

	msg := err.Error()
	for _, want := range []string{"pattern.name", "tactics[0].id", "tactics[0].title", "tactics[0].priority", "tactics[0].rubric"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected joined error to mention %s, got: %v", want, msg)
		}
	}
}

func TestPriority_Weight(t *testing.T) {
	tests := []struct {
		priority Priority
		want     float64
	}{
		{PriorityCritical, 3.0},
		{PriorityImportant, 2.0},
		{PriorityOptional, 1.0},
		{Priority("unknown"), 0},
	}

	for _, tt := range tests {
		if got := tt.priority.Weight(); got != tt.want {
			t.Errorf("Weight(%q) = %v, want %v", tt.priority, got, tt.want)
		}
	}
}
