package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/ayoisaiah/sati/internal/session"
	"github.com/ayoisaiah/sati/internal/timeutil"
)

var phaseLabels = map[session.Phase]string{
	session.PhaseIdle:         "Preparing",
	session.PhaseGong:         "Gong",
	session.PhaseBeforeSilent: "Opening audio",
	session.PhaseSilent:       "Silent meditation",
	session.PhaseAfterSilent:  "Closing audio",
	session.PhaseComplete:     "Complete",
}

func (m *Meditation) sessionView() string {
	var s strings.Builder

	label := phaseLabels[m.state.CurrentSegment]

	s.WriteString(m.style.secondary.Render("[" + label + "]"))

	if !m.state.IsPlaying {
		s.WriteString(" " + m.style.hint.Render("(paused)"))
	}

	s.WriteString("\n\n")
	s.WriteString(
		m.style.main.Render(timeutil.FormatSecs(m.state.RemainingSec)),
	)
	s.WriteString("\n\n")
	s.WriteString(m.progress.ViewAs(m.state.Progress))

	if m.lastErr != "" {
		s.WriteString("\n\n" + m.style.warn.Render(m.lastErr))
	}

	s.WriteString("\n\n" + m.help.ShortHelpView([]key.Binding{
		defaultKeymap.togglePlay,
		defaultKeymap.quit,
	}))

	return s.String()
}

func (m *Meditation) completeView() string {
	var s strings.Builder

	s.WriteString(m.style.main.Render("Your meditation session is complete"))
	s.WriteString(
		"\n\n" + m.style.secondary.Render(
			"May you carry this stillness with you.",
		),
	)

	return s.String()
}

func (m *Meditation) View() string {
	if m.quitting {
		return ""
	}

	if m.done {
		return m.style.base.Render(m.completeView())
	}

	return m.style.base.Render(m.sessionView())
}
