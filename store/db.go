package store

import (
	"time"

	"github.com/ayoisaiah/sati/internal/models"
)

// DB is the session history storage interface.
type DB interface {
	// UpdateSession creates or overwrites a session record keyed by its
	// start time.
	UpdateSession(sess *models.HistorySession) error
	// GetSession retrieves the session that started at the given time.
	GetSession(startTime time.Time) (*models.HistorySession, error)
	// GetSessions returns saved sessions within the time bounds, oldest
	// first.
	GetSessions(startTime, endTime time.Time) ([]models.HistorySession, error)
	// DeleteSessions removes one or more saved sessions.
	DeleteSessions(sessions []models.HistorySession) error
	// Close ends the database connection.
	Close() error
}
