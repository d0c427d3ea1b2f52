package tui

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/ayoisaiah/sati/internal/static"
)

// postSession sends a desktop notification and runs the user's session
// command once a session completes. Both are best-effort.
func (m *Meditation) postSession() {
	if m.opts.Prefs.Notify {
		err := beeep.Notify(
			"Meditation complete",
			"Your session has ended.",
			static.NotificationIconPath(),
		)
		if err != nil {
			slog.Warn("unable to display notification", slog.Any("error", err))
		}

		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			slog.Warn("unable to ring completion bell", slog.Any("error", err))
		}
	}

	err := m.runSessionCmd(m.opts.Prefs.SessionCmd)
	if err != nil {
		slog.Warn("session command failed", slog.Any("error", err))
	}
}

// runSessionCmd executes the specified command.
func (m *Meditation) runSessionCmd(sessionCmd string) error {
	if sessionCmd == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(sessionCmd)
	if err != nil {
		return fmt.Errorf("unable to parse session_cmd option: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.Command(name, args...)

	return cmd.Run()
}
