package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/sati/internal/config"
)

func TestEnsureSeed(t *testing.T) {
	snap, err := config.New()
	require.NoError(t, err)

	require.Zero(t, snap.Prefs.Seed)

	ensureSeed(snap)
	assert.NotZero(t, snap.Prefs.Seed, "an unset seed must be pinned")

	pinned := snap.Prefs.Seed

	ensureSeed(snap)
	assert.Equal(t, pinned, snap.Prefs.Seed, "a pinned seed must be kept")

	snap.Prefs.Seed = 42
	ensureSeed(snap)
	assert.Equal(t, int64(42), snap.Prefs.Seed, "an explicit seed must be kept")
}

func TestFirstNonEmptyString(t *testing.T) {
	assert.Equal(t, "a", firstNonEmptyString("", "a", "b"))
	assert.Empty(t, firstNonEmptyString("", ""))
}
