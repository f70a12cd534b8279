package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bailiff-dev/bailiff/internal/cycle"
)

// Layer display states.
const (
	statusQueued       = "queued"
	statusImplementing = "implementing"
	statusReviewing    = "reviewing"
	statusFixing       = "fixing"
	statusPassed       = "passed"
	statusFailed       = "failed"
	statusSkipped      = "skipped"
	statusEscalated    = "escalated"
)

// LayerView tracks the display state of a single layer in the TUI
type LayerView struct {
	Name      string
	Patterns  []string
	Threshold float64

	Status    string
	Phase     string
	PhaseIcon string
	Iteration int

	Score    float64
	HasScore bool
	Reasons  []string
	Commit   string
	Err      string
}

// Model is the bubbletea model for the run TUI
type Model struct {
	// Configuration
	Feature       string
	Threshold     float64
	MaxIterations int
	Styles        Styles

	// State. Layers keeps arrival order; layers run sequentially so
	// arrival order is run order.
	Layers    []*LayerView
	byName    map[string]*LayerView
	StartTime time.Time
	LogLines  []string
	LogLimit  int
	Width     int
	Height    int

	// Escalation is the pending operator decision, nil when none.
	Escalation    *EscalationMsg
	thresholdMode bool
	thresholdBuf  string
	inputErr      string

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a new TUI model
func NewModel(feature string) *Model {
	return &Model{
		Feature:   feature,
		Styles:    DefaultStyles(),
		byName:    make(map[string]*LayerView),
		StartTime: time.Now(),
		LogLimit:  200,
	}
}

// layer returns the view for the named layer, registering it on first use.
func (m *Model) layer(name string) *LayerView {
	if lv, ok := m.byName[name]; ok {
		return lv
	}
	lv := &LayerView{Name: name, Status: statusQueued}
	m.byName[name] = lv
	m.Layers = append(m.Layers, lv)
	return lv
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
	)
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

// tickCmd returns a command that sends TickMsg every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit
type DoneMsg struct{}

// RunStartedMsg seeds the header and the ordered layer list
type RunStartedMsg struct {
	Feature       string
	Layers        []string
	Threshold     float64
	MaxIterations int
}

// LayerQueuedMsg registers a layer before any work starts on it
type LayerQueuedMsg struct {
	Layer     string
	Patterns  []string
	Threshold float64
}

// LayerPhaseMsg updates the phase line of a layer. An empty Status
// keeps the current one.
type LayerPhaseMsg struct {
	Layer     string
	Status    string
	Phase     string
	PhaseIcon string
	Iteration int
}

// GateMsg carries a gate decision for a layer
type GateMsg struct {
	Layer   string
	Passed  bool
	Score   float64
	Reasons []string
}

// LayerDoneMsg marks a layer terminal
type LayerDoneMsg struct {
	Layer    string
	Status   string
	Score    float64
	HasScore bool
	Err      string
}

// CommittedMsg records the commit hash for a passed layer
type CommittedMsg struct {
	Layer string
	Hash  string
}

// EscalationMsg asks the operator to decide an escalated layer. The
// decision is sent on Answers exactly once.
type EscalationMsg struct {
	Prompt  cycle.EscalationPrompt
	Answers chan cycle.Answer
}
