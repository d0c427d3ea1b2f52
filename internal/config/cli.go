package config

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/sati/internal/session"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Duration      uint
	Timing        string
	Pause         uint
	Gong          string
	NoGong        bool
	Disable       string
	Technique     string
	SessionCmd    string
	SoundsDir     string
	Seed          int64
	DisableNotify bool
}

// WithCLIConfig returns an Option that overrides configuration from CLI
// flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(s *Snapshot) error {
		opts := CLIOptions{
			Duration:      ctx.Uint("duration"),
			Timing:        ctx.String("timing"),
			Pause:         ctx.Uint("pause"),
			Gong:          ctx.String("gong"),
			NoGong:        ctx.Bool("no-gong"),
			Disable:       ctx.String("disable"),
			Technique:     ctx.String("technique"),
			SessionCmd:    ctx.String("session-cmd"),
			SoundsDir:     ctx.String("sounds-dir"),
			Seed:          ctx.Int64("seed"),
			DisableNotify: ctx.Bool("disable-notification"),
		}

		return applyCLIOptions(s, opts)
	}
}

// applyCLIOptions applies CLI options to the snapshot.
func applyCLIOptions(s *Snapshot, opts CLIOptions) error {
	if opts.Duration > 0 {
		s.Prefs.TotalDurationMinutes = int(opts.Duration)
	}

	if opts.Timing != "" {
		s.Prefs.TimingPreference = session.TimingPreference(opts.Timing)
	}

	if opts.Pause > 0 {
		s.Prefs.PauseDurationSec = int(opts.Pause)
	}

	if opts.Gong != "" {
		s.Prefs.GongPreference = session.GongPreference(opts.Gong)
		s.Prefs.GongEnabled = s.Prefs.GongPreference != session.GongNone
	}

	if opts.NoGong {
		s.Prefs.GongEnabled = false
		s.Prefs.GongPreference = session.GongNone
	}

	if opts.Disable != "" {
		if err := disableSegments(s, opts.Disable); err != nil {
			return err
		}
	}

	if opts.Technique != "" {
		seg := s.Segment(session.TechniqueReminder)
		seg.Technique = session.TechniqueType(opts.Technique)
		s.Segments[session.TechniqueReminder] = seg
	}

	if opts.SessionCmd != "" {
		s.Prefs.SessionCmd = opts.SessionCmd
	}

	if opts.SoundsDir != "" {
		s.Prefs.SoundsDir = opts.SoundsDir
	}

	if opts.Seed != 0 {
		s.Prefs.Seed = opts.Seed
	}

	if opts.DisableNotify {
		s.Prefs.Notify = false
	}

	return s.Validate()
}

// disableSegments disables the comma-delimited segment types in list.
func disableSegments(s *Snapshot, list string) error {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		t := session.SegmentType(name)

		seg, ok := s.Segments[t]
		if !ok || t == session.Silent {
			return errUnknownSegment.Fmt(name)
		}

		seg.Enabled = false
		s.Segments[t] = seg
	}

	return nil
}
