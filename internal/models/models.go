package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/session"
	"github.com/ayoisaiah/sati/internal/timing"
)

// HistorySession is one recorded meditation session: the configuration it
// ran with, the computed time breakdown, and the playback events as they
// actually happened.
type HistorySession struct {
	ID        string                  `json:"id"`
	StartTime time.Time               `json:"start_time"`
	EndTime   time.Time               `json:"end_time"`
	Config    config.Snapshot         `json:"config"`
	Durations timing.Durations        `json:"durations"`
	Sequence  []session.PlaybackEvent `json:"sequence"`
	Completed bool                    `json:"completed"`
}

// NewHistorySession starts a session record at the given time.
func NewHistorySession(
	startTime time.Time,
	snap config.Snapshot,
	durations timing.Durations,
) *HistorySession {
	return &HistorySession{
		ID:        uuid.NewString(),
		StartTime: startTime,
		Config:    snap,
		Durations: durations,
	}
}
