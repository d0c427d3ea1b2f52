package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/models"
	"github.com/ayoisaiah/sati/internal/session"
	"github.com/ayoisaiah/sati/internal/timing"
	"github.com/ayoisaiah/sati/store"
)

func testClient(t *testing.T) *store.Client {
	t.Helper()

	client, err := store.NewClient(filepath.Join(t.TempDir(), "sati.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, client.Close())
	})

	return client
}

func testSession(t *testing.T, startTime time.Time) *models.HistorySession {
	t.Helper()

	snap, err := config.New()
	require.NoError(t, err)

	sess := models.NewHistorySession(startTime, *snap, timing.Durations{
		TotalSec:  3600,
		GongSec:   10,
		SilentSec: 3590,
	})

	sess.Sequence = append(sess.Sequence, session.PlaybackEvent{
		SegmentType: session.Gong,
		AudioID:     "gong_g1",
		StartedAt:   startTime,
		DurationSec: 5,
		Completed:   true,
	})

	return sess
}

func TestSecondClientIsRejected(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sati.db")

	client, err := store.NewClient(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, client.Close())
	})

	_, err = store.NewClient(dbPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestUpdateAndGetSession(t *testing.T) {
	client := testClient(t)

	start := time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC)
	sess := testSession(t, start)

	require.NoError(t, client.UpdateSession(sess))

	got, err := client.GetSession(start)
	require.NoError(t, err)

	assert.Equal(t, sess.ID, got.ID)
	assert.True(t, got.StartTime.Equal(start))
	assert.Equal(t, sess.Durations, got.Durations)
	require.Len(t, got.Sequence, 1)
	assert.Equal(t, "gong_g1", got.Sequence[0].AudioID)
}

func TestUpdateSessionOverwrites(t *testing.T) {
	client := testClient(t)

	start := time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC)
	sess := testSession(t, start)

	require.NoError(t, client.UpdateSession(sess))

	sess.Completed = true
	sess.EndTime = start.Add(time.Hour)
	require.NoError(t, client.UpdateSession(sess))

	got, err := client.GetSession(start)
	require.NoError(t, err)

	assert.True(t, got.Completed)
	assert.True(t, got.EndTime.Equal(sess.EndTime))
}

func TestGetSessionMissing(t *testing.T) {
	client := testClient(t)

	got, err := client.GetSession(time.Now())
	require.NoError(t, err)

	assert.Empty(t, got.ID)
}

func TestGetSessionsRange(t *testing.T) {
	client := testClient(t)

	base := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	for day := 0; day < 5; day++ {
		sess := testSession(t, base.AddDate(0, 0, day))
		require.NoError(t, client.UpdateSession(sess))
	}

	got, err := client.GetSessions(
		base.AddDate(0, 0, 1),
		base.AddDate(0, 0, 3),
	)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.True(t, got[0].StartTime.Equal(base.AddDate(0, 0, 1)))
	assert.True(t, got[2].StartTime.Equal(base.AddDate(0, 0, 3)))
}

func TestGetSessionsEmptyRange(t *testing.T) {
	client := testClient(t)

	sess := testSession(t, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, client.UpdateSession(sess))

	got, err := client.GetSessions(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.Empty(t, got)
}

func TestDeleteSessions(t *testing.T) {
	client := testClient(t)

	base := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	first := testSession(t, base)
	second := testSession(t, base.AddDate(0, 0, 1))

	require.NoError(t, client.UpdateSession(first))
	require.NoError(t, client.UpdateSession(second))

	require.NoError(
		t,
		client.DeleteSessions([]models.HistorySession{*first}),
	)

	got, err := client.GetSessions(base, base.AddDate(0, 0, 2))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, second.ID, got[0].ID)
}
