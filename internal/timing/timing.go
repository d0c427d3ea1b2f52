// Package timing computes the duration components of a meditation session.
// It is the single source of truth for audio/gong/pause/silent arithmetic;
// the timeline builder and the playback machine both derive their numbers
// from here.
package timing

import (
	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/session"
)

// Durations holds the calculated duration components of a session, all in
// whole seconds.
type Durations struct {
	TotalSec  int `json:"total_sec"`
	AudioSec  int `json:"audio_sec"`
	GongSec   int `json:"gong_sec"`
	PauseSec  int `json:"pause_sec"`
	SilentSec int `json:"silent_sec"`

	// AudioOverflow reports that audio, gong, and pauses alone meet or
	// exceed the user's chosen total, so silent time collapsed to zero and
	// the effective total exceeds the selection. A warning condition, not
	// an error.
	AudioOverflow bool `json:"audio_overflow"`
}

// Calculate derives the session durations from the preferences and the
// resolved before/after-silent segments. Inputs are clamped; it never
// fails.
func Calculate(
	prefs config.Preferences,
	before, after []session.ResolvedSegment,
) Durations {
	var d Durations

	for _, seg := range before {
		d.AudioSec += seg.DurationSec()
	}

	for _, seg := range after {
		d.AudioSec += seg.DurationSec()
	}

	gong := prefs.GongEnabled && prefs.GongPreference != session.GongNone
	if gong {
		// one occurrence at each end of the session
		d.GongSec = 2 * session.GongDurationSec
	}

	pauseLen := prefs.PauseDurationSec
	if pauseLen < 0 {
		pauseLen = 0
	}

	chosenSec := prefs.TotalDurationMinutes * 60
	if chosenSec < 0 {
		chosenSec = 0
	}

	switch prefs.TimingPreference {
	case session.TimingSilent:
		// the chosen duration is the silent portion verbatim
		d.SilentSec = chosenSec
		d.PauseSec = pauseLen * pausePoints(before, after, gong, d.SilentSec > 0)
		d.TotalSec = d.SilentSec + d.AudioSec + d.GongSec + d.PauseSec
	default:
		// the chosen duration is a ceiling on the whole session
		d.PauseSec = pauseLen * pausePoints(before, after, gong, true)
		d.SilentSec = chosenSec - d.AudioSec - d.GongSec - d.PauseSec

		if d.SilentSec <= 0 {
			// audio swallowed the whole session: drop the silent block and
			// recount pauses without it
			d.SilentSec = 0
			d.PauseSec = pauseLen * pausePoints(before, after, gong, false)
			d.AudioOverflow = d.AudioSec+d.GongSec+d.PauseSec >= chosenSec
		}

		d.TotalSec = d.SilentSec + d.AudioSec + d.GongSec + d.PauseSec
	}

	return d
}

// pausePoints counts pause-insertion points by walking the playable
// sequence: one pause between every two consecutive playable items within
// the same contiguous run. The silent block ends a run, so the item that
// follows silence gets no leading pause.
func pausePoints(
	before, after []session.ResolvedSegment,
	gong, silent bool,
) int {
	var (
		count     int
		needPause bool
	)

	countClips := func(segs []session.ResolvedSegment) {
		for _, seg := range segs {
			for range seg.Clips {
				if needPause {
					count++
				}

				needPause = true
			}
		}
	}

	if gong {
		needPause = true
	}

	countClips(before)

	if silent {
		needPause = false
	}

	countClips(after)

	if gong && needPause {
		count++
	}

	return count
}
