package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bailiff-dev/bailiff/internal/cycle"
)

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		// Continue ticking for timer updates
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case RunStartedMsg:
		if msg.Feature != "" {
			m.Feature = msg.Feature
		}
		m.Threshold = msg.Threshold
		m.MaxIterations = msg.MaxIterations
		for _, name := range msg.Layers {
			m.layer(name)
		}

	case LayerQueuedMsg:
		lv := m.layer(msg.Layer)
		lv.Patterns = msg.Patterns
		lv.Threshold = msg.Threshold

	case LayerPhaseMsg:
		lv := m.layer(msg.Layer)
		if msg.Status != "" {
			lv.Status = msg.Status
		}
		lv.Phase = msg.Phase
		lv.PhaseIcon = msg.PhaseIcon
		if msg.Iteration > 0 {
			lv.Iteration = msg.Iteration
		}

	case GateMsg:
		lv := m.layer(msg.Layer)
		lv.Score = msg.Score
		lv.HasScore = true
		if msg.Passed {
			lv.Reasons = nil
		} else {
			lv.Reasons = msg.Reasons
		}

	case LayerDoneMsg:
		lv := m.layer(msg.Layer)
		lv.Status = msg.Status
		lv.Phase = ""
		lv.PhaseIcon = ""
		if msg.HasScore {
			lv.Score = msg.Score
			lv.HasScore = true
		}
		if msg.Status == statusPassed {
			lv.Reasons = nil
		}
		lv.Err = msg.Err

	case CommittedMsg:
		lv := m.layer(msg.Layer)
		if len(msg.Hash) > 7 {
			lv.Commit = msg.Hash[:7]
		} else {
			lv.Commit = msg.Hash
		}

	case EscalationMsg:
		m.Escalation = &msg
		m.thresholdMode = false
		m.thresholdBuf = ""
		m.inputErr = ""

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		// Quitting with a decision pending aborts the run so the
		// coordinator is not left blocked on a dead program.
		if m.Escalation != nil {
			m.Escalation.Answers <- cycle.Answer{Resolution: cycle.ResolutionAbort}
			m.Escalation = nil
		}
		m.Quitting = true
		return m, tea.Quit
	}

	if m.Escalation != nil {
		if m.thresholdMode {
			return m.handleThresholdKey(key)
		}
		switch key {
		case "c":
			return m.answer(cycle.Answer{Resolution: cycle.ResolutionContinueManually})
		case "l":
			m.thresholdMode = true
			m.thresholdBuf = ""
			m.inputErr = ""
		case "s":
			return m.answer(cycle.Answer{Resolution: cycle.ResolutionSkipLayer})
		case "a":
			return m.answer(cycle.Answer{Resolution: cycle.ResolutionAbort})
		}
		return m, nil
	}

	switch key {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleThresholdKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.thresholdMode = false
		m.thresholdBuf = ""
		m.inputErr = ""
	case "enter":
		current := m.Escalation.Prompt.Threshold
		v, err := strconv.ParseFloat(m.thresholdBuf, 64)
		if err != nil || v <= 0 || v >= current {
			m.inputErr = fmt.Sprintf("threshold must be a number below %.2f", current)
			return m, nil
		}
		return m.answer(cycle.Answer{Resolution: cycle.ResolutionLowerThreshold, NewThreshold: v})
	case "backspace":
		if len(m.thresholdBuf) > 0 {
			m.thresholdBuf = m.thresholdBuf[:len(m.thresholdBuf)-1]
			m.inputErr = ""
		}
	default:
		if len(key) == 1 && (key[0] >= '0' && key[0] <= '9' || key[0] == '.') {
			m.thresholdBuf += key
			m.inputErr = ""
		}
	}
	return m, nil
}

// answer sends the decision back to the coordinator and clears the
// pending escalation. Answers is buffered so the send never blocks.
func (m *Model) answer(a cycle.Answer) (tea.Model, tea.Cmd) {
	if m.Escalation != nil {
		m.Escalation.Answers <- a
		m.Escalation = nil
	}
	m.thresholdMode = false
	m.thresholdBuf = ""
	m.inputErr = ""
	return m, nil
}
