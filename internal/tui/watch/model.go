// Package watch is the live terminal dashboard: one panel per chamber
// showing the derived signals, the most recent floor activity, and the
// refresh schedule.
package watch

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/events"
)

// tickInterval drives both the clock redraw and the scheduler polling. The
// schedulers themselves decide whether any tick actually fetches.
const tickInterval = time.Second

// Snapshot is one chamber's state as rendered by the dashboard.
type Snapshot struct {
	Name        string
	Signals     chamber.Signals
	Updated     time.Time
	NextUpdate  time.Time
	Activity    events.Event
	HasActivity bool
	Err         error
}

// KeyMap is the dashboard's key bindings.
type KeyMap struct {
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Help, k.Quit}}
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "force refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the bubbletea model for the watch dashboard.
type Model struct {
	chambers []chamber.Chamber

	width  int
	height int

	snapshots []Snapshot
	now       time.Time

	// inFlight is set while an update command is running. A chamber's
	// update must never run concurrently with another on the same chamber,
	// so at most one command is dispatched at a time.
	inFlight bool

	keys     KeyMap
	help     help.Model
	showHelp bool
}

// NewModel builds the dashboard over the given chambers.
func NewModel(chambers []chamber.Chamber) *Model {
	h := help.New()
	h.ShowAll = false
	return &Model{
		chambers: chambers,
		keys:     DefaultKeyMap(),
		help:     h,
		now:      time.Now(),
	}
}

type tickMsg time.Time

type snapshotsMsg []Snapshot

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the refresh loop with a forced update so the dashboard never
// opens empty.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(true), tick())
}

// refreshCmd dispatches an update command unless one is already running.
// A fetch slower than the tick cadence must not overlap with the next one.
func (m *Model) refreshCmd(force bool) tea.Cmd {
	if m.inFlight {
		return nil
	}
	m.inFlight = true
	return m.updateChambers(force)
}

// updateChambers runs the scheduler-gated update for each chamber off the
// UI goroutine and reports fresh snapshots.
func (m *Model) updateChambers(force bool) tea.Cmd {
	chambers := m.chambers
	return func() tea.Msg {
		snaps := make([]Snapshot, 0, len(chambers))
		for _, c := range chambers {
			_, err := c.Update(context.Background(), force)
			snap := Snapshot{
				Name:       c.Name(),
				Signals:    c.Signals(),
				Updated:    c.Updated(),
				NextUpdate: c.NextUpdate(),
				Err:        err,
			}
			if ev, ok := c.Activity(time.Now()); ok {
				snap.Activity = ev
				snap.HasActivity = true
			}
			snaps = append(snaps, snap)
		}
		return snapshotsMsg(snaps)
	}
}

// Update is the bubbletea update loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tea.Batch(m.refreshCmd(false), tick())

	case snapshotsMsg:
		m.snapshots = msg
		m.inFlight = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refreshCmd(true)
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}
	}
	return m, nil
}
