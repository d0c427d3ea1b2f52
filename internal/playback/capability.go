// Package playback drives a meditation session through its phases: gong,
// before-silent audio, silent meditation, after-silent audio, complete. It
// owns a single audio player and a single countdown timer for the lifetime
// of a session and emits state snapshots to its subscribers.
package playback

// Source is an opaque playable handle produced by a Resolver and consumed
// by a Player.
type Source any

// Player is the single-clip audio player capability. At most one clip is
// loaded at a time.
type Player interface {
	// Load prepares the clip for playback, replacing any loaded clip.
	Load(id string, src Source) error

	// Play starts or resumes playback of the loaded clip.
	Play() error

	// Pause suspends playback without unloading the clip.
	Pause() error

	// Stop halts playback and rewinds to the start.
	Stop() error

	// PositionSec reports the playback position of the loaded clip.
	PositionSec() float64

	// DurationSec reports the duration of the loaded clip.
	DurationSec() float64

	// SetHandlers registers the progress sampler and completion callback.
	// Progress is reported as a fraction in [0, 1].
	SetHandlers(onProgress func(fraction float64), onFinished func())

	// Close releases the player's resources. Safe to call repeatedly.
	Close() error
}

// Resolver maps audio ids to playable source handles.
type Resolver interface {
	// Resolve returns the playable handle for an audio id.
	Resolve(id string) (Source, error)

	// PreloadAll eagerly prepares every known clip. Best-effort: failures
	// are logged, not returned.
	PreloadAll()

	// IsPreloaded reports whether the clip is ready for immediate playback.
	IsPreloaded(id string) bool

	// Cleanup releases any preloaded resources. Safe to call repeatedly.
	Cleanup()
}

// Countdown is the silent-meditation timer capability, ticking at 1-second
// resolution.
type Countdown interface {
	Start(seconds int)
	Pause()
	Resume()
	Stop()

	// SetHandlers registers the tick and completion callbacks.
	SetHandlers(onTick func(remainingSec int), onComplete func())
}
