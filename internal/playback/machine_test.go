package playback_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/playback"
	"github.com/ayoisaiah/sati/internal/session"
)

const (
	waitTimeout  = 5 * time.Second
	waitInterval = 10 * time.Millisecond
)

type fakeLibrary struct {
	clips map[string]session.Clip
}

func (f *fakeLibrary) Clip(id string) (session.Clip, bool) {
	c, ok := f.clips[id]
	return c, ok
}

func (f *fakeLibrary) Pool(
	_ session.SegmentType,
	_ session.TechniqueType,
) []session.Clip {
	return nil
}

type fakePlayer struct {
	mu         sync.Mutex
	loaded     string
	playing    bool
	failPlay   map[string]bool
	plays      []string
	closes     int
	onProgress func(float64)
	onFinished func()
}

func (p *fakePlayer) Load(id string, _ playback.Source) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loaded = id

	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failPlay[p.loaded] {
		return errors.New("device gone")
	}

	p.playing = true
	p.plays = append(p.plays, p.loaded)

	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false

	return nil
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false

	return nil
}

func (p *fakePlayer) PositionSec() float64 { return 0 }
func (p *fakePlayer) DurationSec() float64 { return 0 }

func (p *fakePlayer) SetHandlers(
	onProgress func(float64),
	onFinished func(),
) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.onProgress = onProgress
	p.onFinished = onFinished
}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closes++

	return nil
}

// finish simulates the loaded clip reaching its natural end.
func (p *fakePlayer) finish() {
	p.mu.Lock()
	f := p.onFinished
	p.mu.Unlock()

	if f != nil {
		f()
	}
}

func (p *fakePlayer) played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.plays))
	copy(out, p.plays)

	return out
}

func (p *fakePlayer) isPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

type fakeResolver struct {
	mu       sync.Mutex
	known    map[string]bool
	preloads int
}

func (r *fakeResolver) Resolve(id string) (playback.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.known[id] {
		return nil, errors.New("unknown clip")
	}

	return id, nil
}

func (r *fakeResolver) PreloadAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.preloads++
}

func (r *fakeResolver) IsPreloaded(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.known[id]
}

func (r *fakeResolver) Cleanup() {}

func (r *fakeResolver) preloadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.preloads
}

type fakeCountdown struct {
	mu         sync.Mutex
	started    []int
	pauses     int
	resumes    int
	onTick     func(int)
	onComplete func()
}

func (c *fakeCountdown) Start(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.started = append(c.started, seconds)
}

func (c *fakeCountdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pauses++
}

func (c *fakeCountdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resumes++
}

func (c *fakeCountdown) Stop() {}

func (c *fakeCountdown) SetHandlers(onTick func(int), onComplete func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onTick = onTick
	c.onComplete = onComplete
}

func (c *fakeCountdown) startedWith() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]int, len(c.started))
	copy(out, c.started)

	return out
}

func (c *fakeCountdown) tick(remaining int) {
	c.mu.Lock()
	f := c.onTick
	c.mu.Unlock()

	if f != nil {
		f(remaining)
	}
}

func (c *fakeCountdown) complete() {
	c.mu.Lock()
	f := c.onComplete
	c.mu.Unlock()

	if f != nil {
		f()
	}
}

// recorder collects machine callbacks.
type recorder struct {
	mu        sync.Mutex
	states    []session.State
	events    []session.PlaybackEvent
	errs      []string
	completes int
}

func (r *recorder) callbacks() playback.Callbacks {
	return playback.Callbacks{
		OnStateChange: func(s session.State) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.states = append(r.states, s)
		},
		OnEvent: func(e session.PlaybackEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
		},
		OnError: func(msg string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, msg)
		},
		OnSessionComplete: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.completes++
		},
	}
}

func (r *recorder) completeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.completes
}

func (r *recorder) eventSegments() []session.SegmentType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]session.SegmentType, len(r.events))
	for i, e := range r.events {
		out[i] = e.SegmentType
	}

	return out
}

func (r *recorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.errs)
}

// fixture builds a silent-mode session: optional gong, one opening chant,
// ten minutes of silence, one metta clip.
func fixture(
	t *testing.T,
	gong bool,
	silentMinutes int,
) (*config.Snapshot, *fakeLibrary, *fakeResolver) {
	t.Helper()

	snap, err := config.New()
	require.NoError(t, err)

	snap.Prefs.TimingPreference = session.TimingSilent
	snap.Prefs.TotalDurationMinutes = silentMinutes

	if !gong {
		snap.Prefs.GongEnabled = false
		snap.Prefs.GongPreference = session.GongNone
	}

	chant := snap.Segment(session.OpeningChant)
	chant.Enabled = true
	chant.SelectedAudioIDs = []string{"chant"}
	snap.Segments[session.OpeningChant] = chant

	metta := snap.Segment(session.Metta)
	metta.Enabled = true
	metta.SelectedAudioIDs = []string{"metta"}
	snap.Segments[session.Metta] = metta

	lib := &fakeLibrary{clips: map[string]session.Clip{
		"chant":   {ID: "chant", Name: "Chant", DurationSec: 120},
		"metta":   {ID: "metta", Name: "Metta", DurationSec: 60},
		"gong_g1": {ID: "gong_g1", Name: "Gong", DurationSec: 5},
	}}

	resolver := &fakeResolver{known: map[string]bool{
		"chant":   true,
		"metta":   true,
		"gong_g1": true,
	}}

	return snap, lib, resolver
}

func waitForPlays(t *testing.T, player *fakePlayer, want []string) {
	t.Helper()

	require.Eventually(t, func() bool {
		got := player.played()
		if len(got) != len(want) {
			return false
		}

		for i := range want {
			if got[i] != want[i] {
				return false
			}
		}

		return true
	}, waitTimeout, waitInterval, "want plays %v, got %v", want, player.played())
}

func TestSessionRunsToCompletion(t *testing.T) {
	snap, lib, resolver := fixture(t, true, 10)
	player := &fakePlayer{}
	countdown := &fakeCountdown{}
	rec := &recorder{}

	m := playback.New(snap, lib, resolver, player, countdown)
	m.SetCallbacks(rec.callbacks())

	m.Start()
	waitForPlays(t, player, []string{"gong_g1"})

	player.finish()
	waitForPlays(t, player, []string{"gong_g1", "chant"})

	player.finish()

	require.Eventually(t, func() bool {
		return len(countdown.startedWith()) == 1
	}, waitTimeout, waitInterval)
	assert.Equal(t, []int{600}, countdown.startedWith())

	countdown.complete()
	waitForPlays(t, player, []string{"gong_g1", "chant", "metta"})

	player.finish()
	waitForPlays(
		t,
		player,
		[]string{"gong_g1", "chant", "metta", "gong_g1"},
	)

	player.finish()

	require.Eventually(t, func() bool {
		return rec.completeCount() == 1
	}, waitTimeout, waitInterval)

	assert.Equal(t, []session.SegmentType{
		session.Gong,
		session.OpeningChant,
		session.Silent,
		session.Metta,
		session.Gong,
	}, rec.eventSegments())

	state := m.GetCurrentState()
	assert.False(t, state.IsPlaying)
	assert.Equal(t, session.PhaseIdle, state.CurrentSegment)
}

func TestStartWhileRunningIsIgnored(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)
	player := &fakePlayer{}

	m := playback.New(snap, lib, resolver, player, &fakeCountdown{})

	m.Start()
	waitForPlays(t, player, []string{"chant"})

	m.Start()
	m.Start()

	assert.Equal(t, []string{"chant"}, player.played())
	assert.Equal(t, 1, resolver.preloadCount())
}

func TestEmptySessionCompletesImmediately(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 0)

	for typ, seg := range snap.Segments {
		seg.Enabled = typ == session.Silent
		snap.Segments[typ] = seg
	}

	player := &fakePlayer{}
	rec := &recorder{}

	m := playback.New(snap, lib, resolver, player, &fakeCountdown{})
	m.SetCallbacks(rec.callbacks())

	m.Start()

	require.Eventually(t, func() bool {
		return rec.completeCount() == 1
	}, waitTimeout, waitInterval)

	assert.Empty(t, player.played())
}

func TestUnresolvableClipIsSkipped(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)

	delete(resolver.known, "chant")

	player := &fakePlayer{}
	countdown := &fakeCountdown{}
	rec := &recorder{}

	m := playback.New(snap, lib, resolver, player, countdown)
	m.SetCallbacks(rec.callbacks())

	m.Start()

	// the bad clip is reported and the session moves on to silence
	require.Eventually(t, func() bool {
		return len(countdown.startedWith()) == 1
	}, waitTimeout, waitInterval)

	assert.Equal(t, 1, rec.errorCount())
	assert.Empty(t, player.played())

	segments := rec.eventSegments()
	require.NotEmpty(t, segments)
	assert.Equal(t, session.OpeningChant, segments[0])
}

func TestPauseResumeDuringAudio(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)
	player := &fakePlayer{}

	m := playback.New(snap, lib, resolver, player, &fakeCountdown{})

	m.Start()
	waitForPlays(t, player, []string{"chant"})

	m.Pause()
	assert.False(t, player.isPlaying())
	assert.False(t, m.GetCurrentState().IsPlaying)

	m.Resume()
	assert.True(t, player.isPlaying())
	assert.True(t, m.GetCurrentState().IsPlaying)
}

func TestPauseResumeDuringSilence(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)
	player := &fakePlayer{}
	countdown := &fakeCountdown{}

	m := playback.New(snap, lib, resolver, player, countdown)

	m.Start()
	waitForPlays(t, player, []string{"chant"})

	player.finish()

	require.Eventually(t, func() bool {
		return len(countdown.startedWith()) == 1
	}, waitTimeout, waitInterval)

	m.Pause()
	m.Resume()

	countdown.mu.Lock()
	pauses, resumes := countdown.pauses, countdown.resumes
	countdown.mu.Unlock()

	assert.Equal(t, 1, pauses)
	assert.Equal(t, 1, resumes)
}

func TestSilentTickUpdatesProgress(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)
	player := &fakePlayer{}
	countdown := &fakeCountdown{}

	m := playback.New(snap, lib, resolver, player, countdown)

	m.Start()
	waitForPlays(t, player, []string{"chant"})

	player.finish()

	require.Eventually(t, func() bool {
		return len(countdown.startedWith()) == 1
	}, waitTimeout, waitInterval)

	countdown.tick(450)

	state := m.GetCurrentState()
	assert.Equal(t, 450, state.RemainingSec)
	assert.InDelta(t, 0.25, state.Progress, 0.001)
}

func TestStopIsIdempotent(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)
	player := &fakePlayer{}
	rec := &recorder{}

	m := playback.New(snap, lib, resolver, player, &fakeCountdown{})
	m.SetCallbacks(rec.callbacks())

	m.Start()
	waitForPlays(t, player, []string{"chant"})

	m.Stop()

	segments := rec.eventSegments()
	require.Len(t, segments, 1)
	assert.Equal(t, session.OpeningChant, segments[0])

	m.Stop()
	m.Stop()

	assert.Len(t, rec.eventSegments(), 1)
	assert.Zero(t, rec.completeCount())
	assert.Equal(t, session.PhaseIdle, m.GetCurrentState().CurrentSegment)
}

func TestStartAfterCleanupIsIgnored(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)
	player := &fakePlayer{}

	m := playback.New(snap, lib, resolver, player, &fakeCountdown{})

	m.Start()
	waitForPlays(t, player, []string{"chant"})

	m.Cleanup()

	m.Start()

	assert.Equal(t, []string{"chant"}, player.played())
	assert.Equal(t, session.PhaseIdle, m.GetCurrentState().CurrentSegment)
}

func TestCleanupIsSafeToRepeat(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)
	player := &fakePlayer{}

	m := playback.New(snap, lib, resolver, player, &fakeCountdown{})

	m.Start()
	waitForPlays(t, player, []string{"chant"})

	m.Cleanup()
	m.Cleanup()

	assert.Equal(t, session.PhaseIdle, m.GetCurrentState().CurrentSegment)
	assert.GreaterOrEqual(t, player.closes, 2)
}

func TestDuplicateFinishDoesNotDoubleAdvance(t *testing.T) {
	snap, lib, resolver := fixture(t, false, 10)
	player := &fakePlayer{}
	countdown := &fakeCountdown{}
	rec := &recorder{}

	m := playback.New(snap, lib, resolver, player, countdown)
	m.SetCallbacks(rec.callbacks())

	m.Start()
	waitForPlays(t, player, []string{"chant"})

	player.finish()
	player.finish()
	player.finish()

	require.Eventually(t, func() bool {
		return len(countdown.startedWith()) >= 1
	}, waitTimeout, waitInterval)

	assert.Equal(t, []int{600}, countdown.startedWith())
	assert.Len(t, rec.eventSegments(), 1)
}

func TestFailingPlayerSkipsToNextClip(t *testing.T) {
	snap, lib, resolver := fixture(t, true, 10)
	player := &fakePlayer{failPlay: map[string]bool{"gong_g1": true}}
	countdown := &fakeCountdown{}
	rec := &recorder{}

	m := playback.New(snap, lib, resolver, player, countdown)
	m.SetCallbacks(rec.callbacks())

	m.Start()

	// the gong fails to play; the session chains into the chant
	waitForPlays(t, player, []string{"chant"})

	assert.GreaterOrEqual(t, rec.errorCount(), 1)

	segments := rec.eventSegments()
	require.NotEmpty(t, segments)
	assert.Equal(t, session.Gong, segments[0])
}
