package events

import (
	"errors"
	"testing"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(LayerReviewing, "domain")

	if event.Type != LayerReviewing {
		t.Errorf("expected Type to be %q, got %q", LayerReviewing, event.Type)
	}

	if event.Layer != "domain" {
		t.Errorf("expected Layer to be %q, got %q", "domain", event.Layer)
	}
}

func TestEvent_WithIteration(t *testing.T) {
	event := NewEvent(FixDispatched, "domain")
	eventWithIter := event.WithIteration(2)

	if eventWithIter.Iteration == nil {
		t.Fatal("expected Iteration pointer to be set")
	}

	if *eventWithIter.Iteration != 2 {
		t.Errorf("expected Iteration to be 2, got %d", *eventWithIter.Iteration)
	}

	if event.Iteration != nil {
		t.Error("expected original event to be unchanged")
	}
}

func TestEvent_WithPayload(t *testing.T) {
	event := NewEvent(ReviewCompleted, "domain")
	payload := map[string]string{"combined_score": "4.2"}
	eventWithPayload := event.WithPayload(payload)

	if eventWithPayload.Payload == nil {
		t.Fatal("expected Payload to be set")
	}

	payloadMap, ok := eventWithPayload.Payload.(map[string]string)
	if !ok {
		t.Fatal("expected Payload to be a map[string]string")
	}

	if payloadMap["combined_score"] != "4.2" {
		t.Errorf("expected Payload[combined_score] to be %q, got %q", "4.2", payloadMap["combined_score"])
	}

	if event.Payload != nil {
		t.Error("expected original event to be unchanged")
	}
}

func TestEvent_WithError(t *testing.T) {
	event := NewEvent(ReviewFailed, "domain")
	err := errors.New("judge timed out")
	eventWithError := event.WithError(err)

	if eventWithError.Error != "judge timed out" {
		t.Errorf("expected Error to be %q, got %q", "judge timed out", eventWithError.Error)
	}

	if event.Error != "" {
		t.Error("expected original event to be unchanged")
	}
}

func TestEvent_WithError_Nil(t *testing.T) {
	event := NewEvent(ReviewCompleted, "domain")
	eventWithError := event.WithError(nil)

	if eventWithError.Error != "" {
		t.Errorf("expected Error to be empty string for nil error, got %q", eventWithError.Error)
	}
}

func TestEvent_IsFailure(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected bool
	}{
		{
			name:     "RunFailed",
			event:    NewEvent(RunFailed, ""),
			expected: true,
		},
		{
			name:     "LayerFailed",
			event:    NewEvent(LayerFailed, "domain"),
			expected: true,
		},
		{
			name:     "JudgePassFailed",
			event:    NewEvent(JudgePassFailed, "domain"),
			expected: true,
		},
		{
			name:     "GateFailed",
			event:    NewEvent(GateFailed, "domain"),
			expected: true,
		},
		{
			name:     "RunCompleted",
			event:    NewEvent(RunCompleted, ""),
			expected: false,
		},
		{
			name:     "LayerPassed",
			event:    NewEvent(LayerPassed, "domain"),
			expected: false,
		},
		{
			name:     "EscalationRaised",
			event:    NewEvent(EscalationRaised, "domain"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsFailure(); got != tt.expected {
				t.Errorf("IsFailure() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEvent_String(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "basic event with layer",
			event:    NewEvent(LayerPassed, "domain"),
			expected: "[layer.passed] domain",
		},
		{
			name:     "event with iteration",
			event:    NewEvent(FixDispatched, "domain").WithIteration(1),
			expected: "[fix.dispatched] domain iter=#1",
		},
		{
			name:     "run event without layer",
			event:    NewEvent(RunStarted, ""),
			expected: "[run.started]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
