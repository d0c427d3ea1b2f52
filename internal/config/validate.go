package config

import (
	"slices"

	"github.com/ayoisaiah/sati/internal/session"
)

const (
	minSessionMinutes = 1
	maxSessionMinutes = 720 // 12 hours
)

// Normalize enforces the structural invariants that cannot be expressed in
// the config file format. Selecting audio clears random, random clears
// order significance, and the silent segment never carries audio.
func (s *Snapshot) Normalize() {
	for t, seg := range s.Segments {
		seg.Type = t

		if len(seg.SelectedAudioIDs) > 0 && seg.Random {
			// an explicit selection wins over a stale random flag
			seg.Random = false
		}

		if seg.Random {
			seg.SelectedAudioIDs = nil
		}

		seg.SelectedAudioIDs = dedupe(seg.SelectedAudioIDs)

		if t == session.Silent {
			seg.SelectedAudioIDs = nil
			seg.Random = false
		}

		if t != session.TechniqueReminder {
			seg.Technique = ""
		}

		if seg.DurationSec < 0 {
			seg.DurationSec = 0
		}

		s.Segments[t] = seg
	}

	if s.Prefs.PauseDurationSec < 1 {
		s.Prefs.PauseDurationSec = defaultPauseSeconds
	}

	if s.Prefs.GongPreference == session.GongNone {
		s.Prefs.GongEnabled = false
	}
}

// Validate reports the first invalid preference value, if any.
func (s *Snapshot) Validate() error {
	switch s.Prefs.TimingPreference {
	case session.TimingTotal, session.TimingSilent:
	default:
		return errInvalidTimingPreference.Fmt(s.Prefs.TimingPreference)
	}

	switch s.Prefs.GongPreference {
	case session.GongNone, session.GongOne, session.GongTwo, "":
	default:
		return errInvalidGongPreference.Fmt(s.Prefs.GongPreference)
	}

	if tr, ok := s.Segments[session.TechniqueReminder]; ok {
		switch tr.Technique {
		case session.Anapana, session.Vipassana, "":
		default:
			return errInvalidTechnique.Fmt(tr.Technique)
		}
	}

	mins := s.Prefs.TotalDurationMinutes
	if mins < minSessionMinutes || mins > maxSessionMinutes {
		return errInvalidDuration.Fmt(minSessionMinutes, maxSessionMinutes, mins)
	}

	if s.Prefs.PauseDurationSec < 1 {
		return errInvalidPause.Fmt(s.Prefs.PauseDurationSec)
	}

	return nil
}

// dedupe removes duplicate ids while preserving order.
func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}

	out := ids[:0]

	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}

	return out
}
