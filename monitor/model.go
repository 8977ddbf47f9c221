// Package monitor is a terminal dashboard showing the tracker connection, the playhead and
// live track values.
package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/halosync/fixture"
	"github.com/robmorgan/halosync/rhythm"
	"github.com/robmorgan/halosync/session"
)

// TickInterval is how often the model polls the source, 40 times a second.
const TickInterval = 25 * time.Millisecond

// maxEventsPerTick bounds how many events one tick drains.
const maxEventsPerTick = 64

type connectedReporter interface {
	Connected() bool
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	src       session.Source
	metronome *rhythm.Metronome
	fixtures  *fixture.Group
	title     string
	tracks    []string

	spinner  spinner.Model
	bar      progress.Model
	values   map[string]float32
	live     bool
	online   bool
	lastEv   string
	saves    int
	quitting bool
}

// Option configures the model.
type Option func(*Model)

// WithFixtures renders a colour swatch per fixture and keeps the group updated from the source.
func WithFixtures(g *fixture.Group) Option {
	return func(m *Model) {
		m.fixtures = g
	}
}

// WithTracks fixes the tracks shown. By default every track the source knows is shown.
func WithTracks(names ...string) Option {
	return func(m *Model) {
		m.tracks = names
	}
}

// WithTitle sets the header line, e.g. the tracker address.
func WithTitle(title string) Option {
	return func(m *Model) {
		m.title = title
	}
}

// New returns a dashboard driving src from the metronome's playhead.
func New(src session.Source, metronome *rhythm.Metronome, opts ...Option) Model {
	s := spinner.New()
	s.Style = spinnerStyle

	m := Model{
		src:       src,
		metronome: metronome,
		title:     "halosync",
		spinner:   s,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		values: map[string]float32{},
	}
	_, m.live = src.(connectedReporter)
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run shows the dashboard until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

var _ tea.Model = Model{}
