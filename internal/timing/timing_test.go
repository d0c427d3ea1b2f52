package timing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/session"
	"github.com/ayoisaiah/sati/internal/timing"
)

func seg(t session.SegmentType, clipSecs ...int) session.ResolvedSegment {
	rs := session.ResolvedSegment{Type: t}

	for _, secs := range clipSecs {
		rs.Clips = append(rs.Clips, session.Clip{
			ID:          string(t) + "_clip",
			DurationSec: secs,
		})
	}

	return rs
}

func prefs(
	timingPref session.TimingPreference,
	minutes int,
	gong bool,
	pauseSec int,
) config.Preferences {
	p := config.Preferences{
		TimingPreference:     timingPref,
		TotalDurationMinutes: minutes,
		PauseDurationSec:     pauseSec,
	}

	if gong {
		p.GongEnabled = true
		p.GongPreference = session.GongOne
	}

	return p
}

func TestCalculateTotalMode(t *testing.T) {
	cases := []struct {
		name   string
		prefs  config.Preferences
		before []session.ResolvedSegment
		after  []session.ResolvedSegment
		want   timing.Durations
	}{
		{
			name:  "audio and gong fit inside the chosen total",
			prefs: prefs(session.TimingTotal, 60, true, 1),
			before: []session.ResolvedSegment{
				seg(session.OpeningChant, 300),
				seg(session.OpeningGuidance, 600),
			},
			after: []session.ResolvedSegment{
				seg(session.Metta, 300),
			},
			want: timing.Durations{
				TotalSec:  3600,
				AudioSec:  1200,
				GongSec:   10,
				PauseSec:  3,
				SilentSec: 2387,
			},
		},
		{
			name:  "gong only",
			prefs: prefs(session.TimingTotal, 60, true, 1),
			want: timing.Durations{
				TotalSec:  3600,
				GongSec:   10,
				SilentSec: 3590,
			},
		},
		{
			name:  "no gong removes the leading pause",
			prefs: prefs(session.TimingTotal, 30, false, 2),
			before: []session.ResolvedSegment{
				seg(session.OpeningChant, 120),
				seg(session.OpeningGuidance, 60),
			},
			want: timing.Durations{
				TotalSec:  1800,
				AudioSec:  180,
				PauseSec:  2,
				SilentSec: 1618,
			},
		},
		{
			name:  "empty session is all silence",
			prefs: prefs(session.TimingTotal, 45, false, 1),
			want: timing.Durations{
				TotalSec:  2700,
				SilentSec: 2700,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := timing.Calculate(tc.prefs, tc.before, tc.after)

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculateSilentMode(t *testing.T) {
	before := []session.ResolvedSegment{
		seg(session.OpeningChant, 300),
		seg(session.OpeningGuidance, 600),
	}
	after := []session.ResolvedSegment{
		seg(session.Metta, 300),
	}

	got := timing.Calculate(
		prefs(session.TimingSilent, 30, true, 1),
		before,
		after,
	)

	want := timing.Durations{
		TotalSec:  3013,
		AudioSec:  1200,
		GongSec:   10,
		PauseSec:  3,
		SilentSec: 1800,
	}

	assert.Equal(t, want, got)
}

func TestCalculateSilentModeZeroMinutes(t *testing.T) {
	// with no silent block, the closing audio follows the opening audio
	// directly and keeps its leading pause
	got := timing.Calculate(
		prefs(session.TimingSilent, 0, false, 1),
		[]session.ResolvedSegment{seg(session.OpeningChant, 100)},
		[]session.ResolvedSegment{seg(session.ClosingChant, 100)},
	)

	want := timing.Durations{
		TotalSec:  201,
		AudioSec:  200,
		PauseSec:  1,
		SilentSec: 0,
	}

	assert.Equal(t, want, got)
}

func TestCalculateOverflow(t *testing.T) {
	got := timing.Calculate(
		prefs(session.TimingTotal, 10, true, 1),
		[]session.ResolvedSegment{
			seg(session.OpeningChant, 300),
			seg(session.OpeningGuidance, 300),
		},
		nil,
	)

	assert.True(t, got.AudioOverflow)
	assert.Zero(t, got.SilentSec)

	// without a silent block the closing gong regains its leading pause
	assert.Equal(t, 3, got.PauseSec)
	assert.Equal(t, 613, got.TotalSec)
	assert.Greater(t, got.TotalSec, 600)
}

func TestCalculateExactFitCountsAsOverflow(t *testing.T) {
	// audio + gong + pauses leave exactly zero silent seconds
	got := timing.Calculate(
		prefs(session.TimingTotal, 10, false, 0),
		[]session.ResolvedSegment{seg(session.OpeningChant, 600)},
		nil,
	)

	assert.Zero(t, got.SilentSec)
	assert.True(t, got.AudioOverflow)
	assert.Equal(t, 600, got.TotalSec)
}

func TestCalculateClampsNegativeInputs(t *testing.T) {
	got := timing.Calculate(
		prefs(session.TimingTotal, -5, true, -3),
		nil,
		nil,
	)

	assert.Zero(t, got.SilentSec)
	assert.Zero(t, got.PauseSec)
	assert.Equal(t, 10, got.TotalSec)
}

func TestCalculateTotalAlwaysConsistent(t *testing.T) {
	// the total must always equal the sum of its parts, whatever the inputs
	variants := []config.Preferences{
		prefs(session.TimingTotal, 60, true, 1),
		prefs(session.TimingTotal, 1, true, 5),
		prefs(session.TimingSilent, 15, false, 2),
		prefs(session.TimingSilent, 0, true, 1),
	}

	before := []session.ResolvedSegment{
		seg(session.OpeningChant, 313),
		seg(session.TechniqueReminder, 127),
	}
	after := []session.ResolvedSegment{
		seg(session.Metta, 251, 97),
		seg(session.ClosingChant, 89),
	}

	for _, p := range variants {
		got := timing.Calculate(p, before, after)

		assert.Equal(
			t,
			got.TotalSec,
			got.AudioSec+got.GongSec+got.PauseSec+got.SilentSec,
		)
	}
}
