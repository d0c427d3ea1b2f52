// Package tui renders a running meditation session in the terminal and
// relays key presses to the playback machine.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/models"
	"github.com/ayoisaiah/sati/internal/playback"
	"github.com/ayoisaiah/sati/internal/session"
	"github.com/ayoisaiah/sati/internal/timing"
	"github.com/ayoisaiah/sati/store"
)

const (
	padding  = 2
	maxWidth = 80
)

type (
	stateMsg    session.State
	eventMsg    session.PlaybackEvent
	errMsg      string
	completeMsg struct{}
)

type styles struct {
	base      lipgloss.Style
	main      lipgloss.Style
	secondary lipgloss.Style
	hint      lipgloss.Style
	warn      lipgloss.Style
}

func newStyles(darkTheme bool) styles {
	accent := lipgloss.Color("5")
	if darkTheme {
		accent = lipgloss.Color("13")
	}

	return styles{
		base:      lipgloss.NewStyle().Padding(1, padding),
		main:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		secondary: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		hint:      lipgloss.NewStyle().Faint(true),
		warn:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Meditation is the bubbletea model for a live session.
type Meditation struct {
	machine  *playback.Machine
	db       store.DB
	opts     *config.Snapshot
	record   *models.HistorySession
	progress progress.Model
	help     help.Model
	style    styles
	state    session.State
	lastErr  string
	done     bool
	quitting bool
}

// New prepares a session view. The history record is created up front so
// an interrupted session still leaves a trace.
func New(
	machine *playback.Machine,
	db store.DB,
	opts *config.Snapshot,
	durations timing.Durations,
) *Meditation {
	return &Meditation{
		machine:  machine,
		db:       db,
		opts:     opts,
		record:   models.NewHistorySession(time.Now(), *opts, durations),
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		style:    newStyles(opts.Prefs.DarkTheme),
		state:    session.IdleState(),
	}
}

// Run wires the machine's callbacks into the program's message loop and
// blocks until the session ends.
func (m *Meditation) Run() error {
	p := tea.NewProgram(m)

	m.machine.SetCallbacks(playback.Callbacks{
		OnStateChange: func(s session.State) {
			p.Send(stateMsg(s))
		},
		OnEvent: func(e session.PlaybackEvent) {
			p.Send(eventMsg(e))
		},
		OnError: func(msg string) {
			p.Send(errMsg(msg))
		},
		OnSessionComplete: func() {
			p.Send(completeMsg{})
		},
	})

	_, err := p.Run()

	return err
}

func (m *Meditation) Init() tea.Cmd {
	m.machine.Start()

	return nil
}
