package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	var b strings.Builder

	// Header
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	// Layers in run order
	b.WriteString(m.renderLayers())

	// Escalation panel
	if m.Escalation != nil {
		b.WriteString(m.renderEscalation())
		b.WriteString("\n")
	}

	// Recent events
	b.WriteString(m.renderLog())

	// Footer
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with timer and run parameters
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))

	parts := []string{
		m.Styles.Title.Render("Bailiff"),
		m.Styles.Timer.Render(timer),
	}
	if m.Feature != "" {
		parts = append(parts, m.Styles.Feature.Render(m.Feature))
	}
	if m.Threshold > 0 {
		meta := fmt.Sprintf("threshold %.2f, max %d fixes", m.Threshold, m.MaxIterations)
		parts = append(parts, m.Styles.Meta.Render(meta))
	}

	return strings.Join(parts, "  ")
}

// renderLayers renders the layer list in run order
func (m *Model) renderLayers() string {
	if len(m.Layers) == 0 {
		return "  Waiting for layers...\n\n"
	}

	var b strings.Builder
	for _, lv := range m.Layers {
		b.WriteString(m.renderLayer(lv))
	}
	b.WriteString("\n")
	return b.String()
}

// renderLayer renders a single layer with its phase and gate state
func (m *Model) renderLayer(lv *LayerView) string {
	var b strings.Builder

	// Status line: ✓ domain [████████░░] 4.20
	icon := m.statusStyle(lv.Status).Render(statusIcon(lv.Status))
	name := m.Styles.LayerName.Render(lv.Name)
	fmt.Fprintf(&b, "  %s %s", icon, name)
	if lv.HasScore {
		fmt.Fprintf(&b, " %s %.2f", m.renderScoreBar(lv.Score, 10), lv.Score)
	}
	if lv.Commit != "" {
		fmt.Fprintf(&b, " %s", m.Styles.Meta.Render("("+lv.Commit+")"))
	}
	b.WriteString("\n")

	// Phase line: 🤖 implementing (fix 2/3)
	if lv.Phase != "" {
		text := lv.Phase
		if lv.Iteration > 0 && m.MaxIterations > 0 {
			text = fmt.Sprintf("%s (fix %d/%d)", lv.Phase, lv.Iteration, m.MaxIterations)
		}
		phaseIcon := m.Styles.PhaseIcon.Render(lv.PhaseIcon)
		fmt.Fprintf(&b, "      %s %s\n", phaseIcon, m.Styles.PhaseText.Render(text))
	}

	for _, r := range lv.Reasons {
		fmt.Fprintf(&b, "      %s\n", m.Styles.Reason.Render("- "+r))
	}
	if lv.Err != "" {
		fmt.Fprintf(&b, "      %s\n", m.Styles.Reason.Render("error: "+lv.Err))
	}

	return b.String()
}

// renderScoreBar renders a 0-5 score as a filled bar of the given width
func (m *Model) renderScoreBar(score float64, width int) string {
	if score < 0 {
		score = 0
	}
	if score > 5 {
		score = 5
	}
	filled := int(score / 5 * float64(width))
	if filled > width {
		filled = width
	}

	return "[" +
		m.Styles.ProgressFilled.Render(strings.Repeat("█", filled)) +
		m.Styles.ProgressEmpty.Render(strings.Repeat("░", width-filled)) +
		"]"
}

// renderEscalation renders the pending decision panel
func (m *Model) renderEscalation() string {
	p := m.Escalation.Prompt

	var b strings.Builder
	b.WriteString(m.Styles.EscalationTitle.Render(
		fmt.Sprintf("Layer %q failed review after %d fix attempts", p.Layer, p.IterationCount)))
	b.WriteString("\n")
	if p.Result != nil {
		fmt.Fprintf(&b, "score %.2f, threshold %.2f\n", p.Result.CombinedScore, p.Threshold)
		for _, r := range p.Result.Decision.Reasons {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}
	b.WriteString("\n")

	if m.thresholdMode {
		fmt.Fprintf(&b, "new threshold (0 < t < %.2f): %s_\n", p.Threshold, m.thresholdBuf)
		if m.inputErr != "" {
			b.WriteString(m.Styles.InputError.Render(m.inputErr))
			b.WriteString("\n")
		}
		b.WriteString(m.Styles.Meta.Render("enter to apply, esc to cancel"))
	} else {
		b.WriteString("[c] continue manually   [l] lower threshold   [s] skip layer   [a] abort")
	}

	return m.Styles.EscalationPanel.Render(b.String())
}

// renderLog renders the tail of the event log
func (m *Model) renderLog() string {
	if len(m.LogLines) == 0 {
		return ""
	}

	show := m.LogLines
	const tail = 8
	if len(show) > tail {
		show = show[len(show)-tail:]
	}

	var b strings.Builder
	b.WriteString(m.Styles.LogTitle.Render("  Recent:"))
	b.WriteString("\n")
	for _, line := range show {
		b.WriteString(m.Styles.LogLine.Render("  " + line))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter renders the help text
func (m *Model) renderFooter() string {
	if m.Escalation != nil {
		return m.Styles.Footer.Render("  Decision required")
	}
	key := m.Styles.FooterKey.Render("q")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to detach (run continues)", key))
}

// statusIcon maps a layer status to its list icon
func statusIcon(status string) string {
	switch status {
	case statusQueued:
		return IconQueued
	case statusPassed:
		return IconPassed
	case statusFailed:
		return IconFailed
	case statusSkipped:
		return IconSkipped
	case statusEscalated:
		return IconEscalated
	default:
		return IconActive
	}
}

// statusStyle maps a layer status to its icon style
func (m *Model) statusStyle(status string) lipgloss.Style {
	switch status {
	case statusQueued:
		return m.Styles.LayerQueued
	case statusPassed:
		return m.Styles.LayerPassed
	case statusFailed:
		return m.Styles.LayerFailed
	case statusEscalated:
		return m.Styles.LayerEscalated
	case statusSkipped:
		return m.Styles.Meta
	default:
		return m.Styles.LayerActive
	}
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
