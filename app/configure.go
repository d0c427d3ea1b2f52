package app

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/session"
	"github.com/ayoisaiah/sati/internal/timeline"
)

const (
	minSessionMinutes = 1
	maxSessionMinutes = 720
)

var configurableSegments = []session.SegmentType{
	session.OpeningChant,
	session.OpeningGuidance,
	session.TechniqueReminder,
	session.Metta,
	session.ClosingChant,
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}

	if n < minSessionMinutes || n > maxSessionMinutes {
		return fmt.Errorf(
			"must be between %d and %d minutes",
			minSessionMinutes,
			maxSessionMinutes,
		)
	}

	return nil
}

// configureAction walks the user through the session settings and writes
// the result to the config file.
func configureAction(_ *cli.Context) error {
	snap, err := config.New(
		config.WithViperConfig(config.ConfigFilePath()),
	)
	if err != nil {
		return err
	}

	duration := strconv.Itoa(snap.Prefs.TotalDurationMinutes)
	timing := string(snap.Prefs.TimingPreference)
	gong := string(snap.Prefs.GongPreference)
	technique := string(snap.Segment(session.TechniqueReminder).Technique)
	notify := snap.Prefs.Notify

	if !snap.Prefs.GongEnabled {
		gong = string(session.GongNone)
	}

	var enabled []string

	segmentOpts := make([]huh.Option[string], 0, len(configurableSegments))

	for _, t := range configurableSegments {
		seg := snap.Segment(t)

		if seg.Enabled {
			enabled = append(enabled, string(t))
		}

		segmentOpts = append(
			segmentOpts,
			huh.NewOption(timeline.Label(t), string(t)).Selected(seg.Enabled),
		)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Session length (minutes)").
				Validate(validateMinutes).
				Value(&duration),
			huh.NewSelect[string]().
				Title("The session length covers").
				Options(
					huh.NewOption("The whole session", "total"),
					huh.NewOption("Silent meditation only", "silent"),
				).
				Value(&timing),
			huh.NewSelect[string]().
				Title("Gong").
				Options(
					huh.NewOption("Burmese gong", "g1"),
					huh.NewOption("Tibetan bowl", "g2"),
					huh.NewOption("No gong", "none"),
				).
				Value(&gong),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Audio segments").
				Options(segmentOpts...).
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Technique reminder").
				Options(
					huh.NewOption("Anapana", "anapana"),
					huh.NewOption("Vipassana", "vipassana"),
				).
				Value(&technique),
			huh.NewConfirm().
				Title("Notify when the session completes?").
				Value(&notify),
		),
	)

	err = form.Run()
	if err != nil {
		return err
	}

	snap.Prefs.TotalDurationMinutes, _ = strconv.Atoi(duration)
	snap.Prefs.TimingPreference = session.TimingPreference(timing)
	snap.Prefs.GongPreference = session.GongPreference(gong)
	snap.Prefs.GongEnabled = gong != string(session.GongNone)
	snap.Prefs.Notify = notify

	for _, t := range configurableSegments {
		seg := snap.Segment(t)
		seg.Enabled = false

		for _, name := range enabled {
			if name == string(t) {
				seg.Enabled = true
				break
			}
		}

		if t == session.TechniqueReminder {
			seg.Technique = session.TechniqueType(technique)
		}

		snap.Segments[t] = seg
	}

	snap.Normalize()

	err = config.Save(snap, config.ConfigFilePath())
	if err != nil {
		return err
	}

	pterm.Success.Printfln("settings saved to %s", config.ConfigFilePath())

	return nil
}
