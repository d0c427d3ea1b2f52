package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/davecgh/go-spew/spew"

	"github.com/ayoisaiah/sati/internal/session"
)

// persist writes the history record, logging rather than interrupting the
// session when the database is unavailable.
func (m *Meditation) persist() {
	if m.db == nil {
		return
	}

	err := m.db.UpdateSession(m.record)
	if err != nil {
		slog.Warn("unable to save session record", slog.Any("error", err))
	}
}

func (m *Meditation) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.togglePlay):
		if m.done || m.quitting {
			return m, nil
		}

		if m.state.IsPlaying {
			m.machine.Pause()
		} else {
			m.machine.Resume()
		}

		return m, nil

	case key.Matches(msg, defaultKeymap.quit):
		m.quitting = true

		m.machine.Stop()

		if !m.done {
			m.record.EndTime = time.Now()
			m.record.Completed = false
			m.persist()
		}

		return m, tea.Batch(tea.ClearScreen, tea.Quit)
	}

	return m, nil
}

func (m *Meditation) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		if !m.quitting {
			m.state = session.State(msg)
		}

		return m, nil

	case eventMsg:
		slog.Debug(spew.Sdump(msg))

		m.record.Sequence = append(m.record.Sequence, session.PlaybackEvent(msg))
		m.persist()

		return m, nil

	case errMsg:
		m.lastErr = string(msg)

		slog.Warn("playback error", slog.String("message", m.lastErr))

		return m, nil

	case completeMsg:
		m.done = true
		m.record.EndTime = time.Now()
		m.record.Completed = true
		m.persist()

		go m.postSession()

		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}

		return m, nil

	// FrameMsg is sent when the progress bar wants to animate itself
	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress, _ = progressModel.(progress.Model)

		return m, cmd
	}

	return m, nil
}
