package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).Padding(0, 1)

	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).Padding(0, 1)

	chamberStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	convenedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	adjournedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	unknownStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// View renders the dashboard.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{
		titleStyle.Render("Chambers") + "  " + statusStyle.Render(m.now.Format("Mon Jan 2 15:04:05")),
	}
	for _, snap := range m.snapshots {
		sections = append(sections, m.renderChamber(snap))
	}
	sections = append(sections, statusStyle.Render("r: force refresh  •  q: quit"))
	if m.showHelp {
		sections = append(sections, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderChamber(snap Snapshot) string {
	var b strings.Builder

	b.WriteString(chamberStyle.Render(strings.ToUpper(snap.Name[:1]) + snap.Name[1:]))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Convened"))
	b.WriteString(renderConvened(snap))
	b.WriteString("\n")

	writeInstant(&b, "Convened at", snap.Signals.ConvenedAt)
	writeInstant(&b, "Adjourned at", snap.Signals.AdjournedAt)
	writeInstant(&b, "Convenes at", snap.Signals.ConvenesAt)

	if snap.HasActivity {
		b.WriteString(labelStyle.Render("Activity"))
		b.WriteString(fmt.Sprintf("%s  %s", snap.Activity.Timestamp.Format("15:04"), truncate(snap.Activity.Description, m.width-24)))
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("Next check"))
	b.WriteString(renderCountdown(snap.NextUpdate, m.now))
	if snap.Err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("error: " + snap.Err.Error()))
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	return panelStyle.Width(width).Render(b.String())
}

func renderConvened(snap Snapshot) string {
	switch snap.Signals.Convened.String() {
	case "true":
		return convenedStyle.Render("IN SESSION")
	case "false":
		return adjournedStyle.Render("ADJOURNED")
	default:
		return unknownStyle.Render("UNKNOWN")
	}
}

func writeInstant(b *strings.Builder, label string, t time.Time) {
	b.WriteString(labelStyle.Render(label))
	if t.IsZero() {
		b.WriteString(statusStyle.Render("—"))
	} else {
		b.WriteString(t.Format("Mon Jan 2 15:04 MST"))
	}
	b.WriteString("\n")
}

func renderCountdown(next time.Time, now time.Time) string {
	if next.IsZero() {
		return statusStyle.Render("—")
	}
	d := next.Sub(now).Round(time.Second)
	if d < 0 {
		return "due now"
	}
	return fmt.Sprintf("%s (in %s)", next.Format("15:04:05"), d)
}

func truncate(s string, max int) string {
	if max < 10 {
		max = 10
	}
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
