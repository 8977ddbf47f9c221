package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/robmorgan/halosync/engine/scale"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	nameStyle    = lipgloss.NewStyle().Width(28)
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	appStyle     = lipgloss.NewStyle().Margin(1, 2, 0, 2)
	swatchStyle  = lipgloss.NewStyle().Width(4)
)

var barLevel = scale.ToUnitClamp(0, 1)

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(m.title + "\n")
	switch {
	case !m.live:
		s.WriteString("playback\n")
	case m.online:
		s.WriteString(onlineStyle.Render("● connected") + "\n")
	default:
		s.WriteString(m.spinner.View() + " waiting for tracker\n")
	}

	snap := m.metronome.Snapshot()
	state := "playing"
	if snap.Paused {
		state = "paused"
	}
	fmt.Fprintf(&s, "\nrow %9.2f  %s  %s  %.1f bpm  %s\n", snap.Row, snap.Position.Truncate(time.Millisecond), snap, snap.Tempo.BPM, state)
	if m.lastEv != "" {
		fmt.Fprintf(&s, "last event: %s", m.lastEv)
		if m.saves > 0 {
			fmt.Fprintf(&s, "  saves: %d", m.saves)
		}
		s.WriteString("\n")
	}
	s.WriteString("\n")

	for _, name := range m.trackNames() {
		v := m.values[name]
		fmt.Fprintf(&s, "%s %s %8.3f\n", nameStyle.Render(name), m.bar.ViewAs(barLevel(float64(v))), v)
	}

	if m.fixtures != nil && m.fixtures.HasFixtures() {
		s.WriteString("\n")
		for _, id := range m.fixtures.Names() {
			f := m.fixtures.Fixtures[id]
			block := swatchStyle.Background(lipgloss.Color(f.Color().Hex())).Render("")
			fmt.Fprintf(&s, "%s %s\n", block, id)
		}
	}

	s.WriteString(helpStyle.Render("(space) pause  (r) rewind\n\nPress q to exit\n"))

	if m.quitting {
		s.WriteString("\n")
	}
	return appStyle.Render(s.String())
}
