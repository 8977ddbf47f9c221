package monitor

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/halosync/session"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			m.metronome.Pause(!m.metronome.Paused())
		case "r":
			m.metronome.Seek(0)
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tickMsg:
		m.poll()
		m.sample()
		return m, tickCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// poll drains pending events from the source into the metronome.
func (m *Model) poll() {
	m.online = true
	for i := 0; i < maxEventsPerTick; i++ {
		ev, ok := m.src.PollEvent()
		if !ok {
			break
		}
		if ev.Kind == session.EventNotConnected {
			m.online = false
			break
		}

		switch ev.Kind {
		case session.EventSeek:
			m.metronome.Seek(ev.Time)
		case session.EventPause:
			m.metronome.Pause(ev.Paused)
		case session.EventSaveTracks:
			m.saves++
		}
		m.lastEv = ev.String()
	}
	if r, ok := m.src.(connectedReporter); ok {
		m.online = r.Connected()
	}
}

// sample moves the source to the playhead and reads the shown tracks.
func (m *Model) sample() {
	m.src.SetTime(m.metronome.Position())
	for _, name := range m.trackNames() {
		m.values[name] = m.src.Value(name)
	}
	if m.fixtures != nil {
		m.fixtures.Update(m.src)
	}
}

func (m Model) trackNames() []string {
	if len(m.tracks) > 0 {
		return m.tracks
	}
	return m.src.Tracks().Names()
}
