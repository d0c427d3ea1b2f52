// Package store persists completed and interrupted meditation sessions.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/sati/internal/models"
	"github.com/ayoisaiah/sati/internal/timeutil"
)

const sessionBucket = "sessions"

var errAlreadyRunning = errors.New(
	"is sati already running? Only one instance can be active at a time",
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

// NewClient opens or creates the database at dbPath and ensures the
// session bucket exists.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Client{db}, nil
}

func (c *Client) UpdateSession(sess *models.HistorySession) error {
	key := timeutil.ToKey(sess.StartTime)

	value, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put(key, value)
	})
}

func (c *Client) GetSession(
	startTime time.Time,
) (*models.HistorySession, error) {
	var sess models.HistorySession

	err := c.View(func(tx *bolt.Tx) error {
		key := timeutil.ToKey(startTime)

		sessBytes := tx.Bucket([]byte(sessionBucket)).Get(key)
		if len(sessBytes) == 0 {
			return nil
		}

		return json.Unmarshal(sessBytes, &sess)
	})

	return &sess, err
}

func (c *Client) GetSessions(
	startTime, endTime time.Time,
) ([]models.HistorySession, error) {
	var b [][]byte

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(sessionBucket)).Cursor()
		min := timeutil.ToKey(startTime)
		max := timeutil.ToKey(endTime)

		for k, v := cur.Seek(min); k != nil && bytes.Compare(k, max) <= 0; k, v = cur.Next() {
			b = append(b, v)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sessions := make([]models.HistorySession, 0, len(b))

	for _, v := range b {
		var sess models.HistorySession

		err = json.Unmarshal(v, &sess)
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, sess)
	}

	return sessions, nil
}

func (c *Client) DeleteSessions(sessions []models.HistorySession) error {
	return c.Update(func(tx *bolt.Tx) error {
		for i := range sessions {
			key := timeutil.ToKey(sessions[i].StartTime)

			err := tx.Bucket([]byte(sessionBucket)).Delete(key)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// openDB creates or opens a database and locks it.
func openDB(dbPath string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		dbPath,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		// a second process holding the flock surfaces as a timeout
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errAlreadyRunning
		}

		return nil, err
	}

	return db, nil
}
