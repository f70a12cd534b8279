package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bailiff-dev/bailiff/internal/cycle"
	"github.com/bailiff-dev/bailiff/internal/events"
)

// Bridge connects the event bus to the bubbletea program and routes
// escalation decisions back out of it.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a new bridge for the given program
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{
		program: program,
	}
}

// Handler returns an event handler function for the event bus
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		msg := b.eventToMsg(evt)
		if msg != nil {
			b.program.Send(msg)
		}
	}
}

// Resolve asks the operator to decide an escalated layer through the
// TUI. It blocks until a decision arrives or ctx is cancelled.
func (b *Bridge) Resolve(ctx context.Context, p cycle.EscalationPrompt) (cycle.Answer, error) {
	answers := make(chan cycle.Answer, 1)
	b.program.Send(EscalationMsg{Prompt: p, Answers: answers})

	select {
	case a := <-answers:
		return a, nil
	case <-ctx.Done():
		return cycle.Answer{}, ctx.Err()
	}
}

// SendDone sends a DoneMsg to the program
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// eventToMsg converts an events.Event to a tea.Msg
func (b *Bridge) eventToMsg(evt events.Event) tea.Msg {
	switch evt.Type {
	case events.RunStarted:
		return RunStartedMsg{
			Feature:       payloadString(evt, "feature"),
			Layers:        payloadStrings(evt, "layers"),
			Threshold:     payloadFloat(evt, "threshold"),
			MaxIterations: payloadInt(evt, "maxIterations"),
		}

	case events.LayerQueued:
		return LayerQueuedMsg{
			Layer:     evt.Layer,
			Patterns:  payloadStrings(evt, "patterns"),
			Threshold: payloadFloat(evt, "threshold"),
		}

	case events.LayerImplementing:
		return LayerPhaseMsg{
			Layer:     evt.Layer,
			Status:    statusImplementing,
			Phase:     "implementing",
			PhaseIcon: IconAgent,
		}

	case events.LayerReviewing:
		return LayerPhaseMsg{
			Layer:     evt.Layer,
			Status:    statusReviewing,
			Phase:     "reviewing",
			PhaseIcon: IconJudge,
			Iteration: iteration(evt),
		}

	case events.JudgePassStarted:
		return LayerPhaseMsg{
			Layer: evt.Layer,
			Phase: fmt.Sprintf("judging %s (pass %d)",
				payloadString(evt, "pattern"), payloadInt(evt, "pass")),
			PhaseIcon: IconJudge,
		}

	case events.LayerFixing:
		return LayerPhaseMsg{
			Layer:     evt.Layer,
			Status:    statusFixing,
			Phase:     "applying fix",
			PhaseIcon: IconFix,
			Iteration: iteration(evt),
		}

	case events.GatePassed:
		return GateMsg{
			Layer:  evt.Layer,
			Passed: true,
			Score:  payloadFloat(evt, "combinedScore"),
		}

	case events.GateFailed:
		return GateMsg{
			Layer:   evt.Layer,
			Passed:  false,
			Score:   payloadFloat(evt, "combinedScore"),
			Reasons: payloadStrings(evt, "reasons"),
		}

	case events.LayerPassed:
		return LayerDoneMsg{
			Layer:    evt.Layer,
			Status:   statusPassed,
			Score:    payloadFloat(evt, "combinedScore"),
			HasScore: true,
		}

	case events.LayerEscalated:
		return LayerPhaseMsg{
			Layer:     evt.Layer,
			Status:    statusEscalated,
			Phase:     "awaiting decision",
			PhaseIcon: IconEscalated,
		}

	case events.EscalationResolved:
		return LayerPhaseMsg{
			Layer:     evt.Layer,
			Phase:     "resolved: " + payloadString(evt, "resolution"),
			PhaseIcon: IconActive,
		}

	case events.LayerSkipped:
		return LayerDoneMsg{
			Layer:  evt.Layer,
			Status: statusSkipped,
		}

	case events.LayerFailed:
		return LayerDoneMsg{
			Layer:  evt.Layer,
			Status: statusFailed,
			Err:    evt.Error,
		}

	case events.ChangesCommitted:
		return CommittedMsg{
			Layer: evt.Layer,
			Hash:  payloadString(evt, "hash"),
		}

	default:
		return nil
	}
}

func payload(evt events.Event) map[string]any {
	p, _ := evt.Payload.(map[string]any)
	return p
}

func payloadString(evt events.Event, key string) string {
	s, _ := payload(evt)[key].(string)
	return s
}

func payloadFloat(evt events.Event, key string) float64 {
	switch v := payload(evt)[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func payloadInt(evt events.Event, key string) int {
	switch v := payload(evt)[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func payloadStrings(evt events.Event, key string) []string {
	switch v := payload(evt)[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func iteration(evt events.Event) int {
	if evt.Iteration != nil {
		return *evt.Iteration
	}
	return 0
}
