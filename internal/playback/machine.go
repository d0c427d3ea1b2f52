package playback

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/session"
	"github.com/ayoisaiah/sati/internal/timeline"
)

// Callbacks are the hooks external collaborators subscribe with. All of
// them are optional.
type Callbacks struct {
	// OnStateChange receives the full state snapshot after every mutation.
	OnStateChange func(session.State)

	// OnSessionComplete fires once when a session runs to natural
	// completion. It does not fire on Stop.
	OnSessionComplete func()

	// OnError receives non-fatal playback errors as displayable messages.
	OnError func(string)

	// OnEvent receives one playback event per played clip or phase,
	// suitable for a history recorder.
	OnEvent func(session.PlaybackEvent)
}

// edge is a directed pair of phases guarded against duplicate firing.
type edge struct {
	from session.Phase
	to   session.Phase
}

// emission is a callback invocation queued while the machine lock is held
// and delivered after it is released.
type emission struct {
	state    *session.State
	event    *session.PlaybackEvent
	errMsg   string
	complete bool
}

// Machine sequences a meditation session through its phases against a
// Player, a Countdown, and a Resolver. All event handling is serialized
// through one mutex; transition-edge guards collapse races between
// near-simultaneous triggers for the same boundary.
type Machine struct {
	mu        sync.Mutex
	snap      *config.Snapshot
	lib       timeline.Library
	resolver  Resolver
	player    Player
	countdown Countdown
	cbs       Callbacks

	plan         *session.Plan
	phase        session.Phase
	state        session.State
	clips        []session.PlannedClip
	clipIdx      int
	clipDone     bool
	clipStarted  time.Time
	phaseStarted time.Time

	attempted    map[edge]bool
	inTransition bool
	chained      session.Phase
	paused       bool
	preloaded    bool
	needGap      bool

	pauseTimer  *time.Timer
	pauseGen    int
	pausePended bool // a clip gap was interrupted by Pause

	pending []emission
}

// New constructs an idle machine. The configuration snapshot is captured
// here and never re-read from live state mid-session.
func New(
	snap *config.Snapshot,
	lib timeline.Library,
	resolver Resolver,
	player Player,
	countdown Countdown,
) *Machine {
	m := &Machine{
		snap:      snap,
		lib:       lib,
		resolver:  resolver,
		player:    player,
		countdown: countdown,
		phase:     session.PhaseIdle,
		state:     session.IdleState(),
		attempted: make(map[edge]bool),
	}

	countdown.SetHandlers(m.handleTick, m.handleSilentComplete)

	return m
}

// SetCallbacks registers the subscriber hooks.
func (m *Machine) SetCallbacks(cbs Callbacks) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cbs = cbs
}

// GetCurrentState returns the current state snapshot synchronously.
func (m *Machine) GetCurrentState() session.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Plan returns the active session plan, or nil when no session is running.
func (m *Machine) Plan() *session.Plan {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.plan
}

// Start builds the session plan and begins playback. Calling Start on a
// machine that is already running is a no-op.
func (m *Machine) Start() {
	m.run(func() {
		// Cleanup discards the configuration; the machine is spent
		if m.snap == nil {
			return
		}

		if m.phase != session.PhaseIdle && m.phase != session.PhaseComplete {
			return
		}

		if !m.preloaded {
			m.resolver.PreloadAll()
			m.preloaded = true
		}

		plan, _ := timeline.BuildPlan(
			m.snap,
			m.lib,
			timeline.NewRand(m.snap.Prefs.Seed),
		)

		m.plan = plan
		m.phase = session.PhaseIdle
		m.attempted = make(map[edge]bool)
		m.paused = false
		m.needGap = false

		if plan.Gong != nil {
			m.transitionLocked(session.PhaseGong)
		} else {
			m.transitionLocked(session.PhaseBeforeSilent)
		}
	})
}

// Pause suspends the session. The current phase is unchanged; only
// IsPlaying flips and the underlying player or timer stops advancing.
func (m *Machine) Pause() {
	m.run(func() {
		if m.paused || !m.activeLocked() {
			return
		}

		m.paused = true

		if m.cancelGapTimerLocked() {
			m.pausePended = true
		}

		if m.phase == session.PhaseSilent {
			m.countdown.Pause()
		} else if err := m.player.Pause(); err != nil {
			m.errorLocked("unable to pause playback: " + err.Error())
		}

		m.setStateLocked(func(s *session.State) {
			s.IsPlaying = false
		})
	})
}

// Resume continues a paused session.
func (m *Machine) Resume() {
	m.run(func() {
		if !m.paused || !m.activeLocked() {
			return
		}

		m.paused = false

		switch {
		case m.pausePended:
			m.pausePended = false
			m.scheduleNextClipLocked()
		case m.phase == session.PhaseSilent:
			m.countdown.Resume()
		default:
			if err := m.player.Play(); err != nil {
				m.errorLocked("unable to resume playback: " + err.Error())
			}
		}

		m.setStateLocked(func(s *session.State) {
			s.IsPlaying = true
		})
	})
}

// Stop hard-resets the machine to idle from any phase. It does not emit
// OnSessionComplete; an interrupted clip or silent block is reported as an
// incomplete event.
func (m *Machine) Stop() {
	m.run(func() {
		if m.phase == session.PhaseIdle {
			return
		}

		m.recordInterruptionLocked()
		m.haltLocked()

		m.plan = nil
		m.phase = session.PhaseIdle
		m.attempted = make(map[edge]bool)
		m.paused = false
		m.clips = nil
		m.clipIdx = 0

		m.setStateLocked(func(s *session.State) {
			*s = session.IdleState()
		})
	})
}

// Cleanup releases player and timer resources and discards the
// configuration. Safe to call multiple times and from any state.
func (m *Machine) Cleanup() {
	m.run(func() {
		m.haltLocked()

		if m.player != nil {
			if err := m.player.Close(); err != nil {
				slog.Warn("closing player", slog.Any("error", err))
			}
		}

		m.plan = nil
		m.snap = nil
		m.clips = nil
		m.phase = session.PhaseIdle
		m.attempted = make(map[edge]bool)
		m.paused = false
		m.state = session.IdleState()
	})
}

// run executes fn under the machine lock, then delivers the emissions fn
// queued. Callbacks therefore never run while the lock is held.
func (m *Machine) run(fn func()) {
	m.mu.Lock()

	fn()

	pending := m.pending
	m.pending = nil
	cbs := m.cbs

	m.mu.Unlock()

	for _, e := range pending {
		switch {
		case e.state != nil:
			if cbs.OnStateChange != nil {
				cbs.OnStateChange(*e.state)
			}
		case e.event != nil:
			if cbs.OnEvent != nil {
				cbs.OnEvent(*e.event)
			}
		case e.errMsg != "":
			if cbs.OnError != nil {
				cbs.OnError(e.errMsg)
			}
		case e.complete:
			if cbs.OnSessionComplete != nil {
				cbs.OnSessionComplete()
			}
		}
	}
}

// activeLocked reports whether a session is in a pausable phase.
func (m *Machine) activeLocked() bool {
	switch m.phase {
	case session.PhaseIdle, session.PhaseComplete:
		return false
	}

	return true
}

// setStateLocked mutates the state through the single merge point and
// queues a full-snapshot emission.
func (m *Machine) setStateLocked(mut func(*session.State)) {
	mut(&m.state)

	snapshot := m.state
	m.pending = append(m.pending, emission{state: &snapshot})
}

func (m *Machine) eventLocked(ev session.PlaybackEvent) {
	m.pending = append(m.pending, emission{event: &ev})
}

func (m *Machine) errorLocked(msg string) {
	slog.Warn("playback error", slog.String("message", msg))
	m.pending = append(m.pending, emission{errMsg: msg})
}

// transitionLocked attempts a guarded phase transition. Each directed edge
// fires at most once per session, and external re-entry during a
// transition is refused. Empty phases are skipped by chaining to the next
// phase inside the same transition.
func (m *Machine) transitionLocked(target session.Phase) {
	if m.inTransition {
		// an advance requested while a phase is being entered (e.g. the
		// phase's only clip failed to start) folds into the active chain
		m.chained = target
		return
	}

	m.inTransition = true
	defer func() { m.inTransition = false }()

	for target != "" {
		if target == m.phase {
			slog.Debug(
				"transition refused: already in phase",
				slog.String("target", string(target)),
			)

			return
		}

		e := edge{from: m.phase, to: target}
		if m.attempted[e] {
			slog.Debug(
				"transition refused: edge already attempted",
				slog.String("from", string(e.from)),
				slog.String("to", string(e.to)),
			)

			return
		}

		m.attempted[e] = true
		m.phase = target
		target = m.enterPhaseLocked()

		if m.chained != "" {
			target = m.chained
			m.chained = ""
		}
	}
}

// enterPhaseLocked performs the work of entering the current phase. A
// non-empty return value requests an immediate skip to that phase.
func (m *Machine) enterPhaseLocked() session.Phase {
	m.phaseStarted = time.Now()

	switch m.phase {
	case session.PhaseGong:
		m.clips = []session.PlannedClip{
			{Segment: session.Gong, Clip: *m.plan.Gong},
		}
		m.clipIdx = 0
		m.startClipLocked()

	case session.PhaseBeforeSilent:
		if len(m.plan.BeforeSilent.Clips) == 0 {
			return session.PhaseSilent
		}

		m.startClipsLocked(m.plan.BeforeSilent.Clips)

	case session.PhaseSilent:
		if m.plan.SilentSec == 0 {
			return session.PhaseAfterSilent
		}

		// silence absorbs the gap; the clip after it starts immediately
		m.needGap = false
		m.clips = nil

		m.setStateLocked(func(s *session.State) {
			s.IsPlaying = true
			s.CurrentSegment = session.PhaseSilent
			s.Progress = 0
			s.RemainingSec = m.plan.SilentSec
			s.DurationSec = m.plan.SilentSec
		})

		m.countdown.Start(m.plan.SilentSec)

	case session.PhaseAfterSilent:
		clips := m.plan.AfterSilent.Clips
		if m.plan.Gong != nil {
			// the closing gong plays as the tail of the after-silent phase
			clips = append(
				clips[:len(clips):len(clips)],
				session.PlannedClip{Segment: session.Gong, Clip: *m.plan.Gong},
			)
		}

		if len(clips) == 0 {
			return session.PhaseComplete
		}

		m.startClipsLocked(clips)

	case session.PhaseComplete:
		m.haltLocked()

		m.setStateLocked(func(s *session.State) {
			*s = session.IdleState()
		})

		m.pending = append(m.pending, emission{complete: true})
	}

	return ""
}

// startClipsLocked begins a clip phase. When the previous playable item
// was a clip (no silent block in between), the configured gap runs before
// the first clip, matching the pause the timeline counts at that boundary.
func (m *Machine) startClipsLocked(clips []session.PlannedClip) {
	m.clips = clips

	if m.needGap {
		m.needGap = false
		m.clipIdx = -1
		m.scheduleNextClipLocked()

		return
	}

	m.clipIdx = 0
	m.startClipLocked()
}

// startClipLocked resolves and plays the clip at clipIdx. Errors are
// reported and the clip is skipped; the session never stalls on a bad
// clip.
func (m *Machine) startClipLocked() {
	pc := m.clips[m.clipIdx]
	m.clipDone = false
	m.clipStarted = time.Now()

	src, err := m.resolver.Resolve(pc.Clip.ID)
	if err != nil {
		m.errorLocked("unable to resolve " + pc.Clip.ID + ": " + err.Error())
		m.finishClipLocked(m.clipIdx, false)

		return
	}

	if err := m.player.Load(pc.Clip.ID, src); err != nil {
		m.errorLocked("unable to load " + pc.Clip.ID + ": " + err.Error())
		m.finishClipLocked(m.clipIdx, false)

		return
	}

	phase, idx := m.phase, m.clipIdx

	m.player.SetHandlers(
		func(fraction float64) { m.handleProgress(phase, idx, fraction) },
		func() { m.handleFinished(phase, idx) },
	)

	if err := m.player.Play(); err != nil {
		m.errorLocked("unable to play " + pc.Clip.ID + ": " + err.Error())
		m.finishClipLocked(m.clipIdx, false)

		return
	}

	duration := pc.Clip.DurationSec
	if d := m.player.DurationSec(); d > 0 {
		duration = int(d)
	}

	m.setStateLocked(func(s *session.State) {
		s.IsPlaying = !m.paused
		s.CurrentSegment = m.phase
		s.Progress = 0
		s.RemainingSec = duration
		s.DurationSec = duration
	})
}

// finishClipLocked records the clip's playback event and advances to the
// next clip (after the configured gap) or to the next phase.
func (m *Machine) finishClipLocked(idx int, completed bool) {
	if m.clipDone || idx != m.clipIdx {
		return
	}

	m.clipDone = true
	m.needGap = true
	pc := m.clips[idx]

	duration := pc.Clip.DurationSec
	if !completed {
		duration = int(time.Since(m.clipStarted).Seconds())
	}

	m.eventLocked(session.PlaybackEvent{
		SegmentType: pc.Segment,
		AudioID:     pc.Clip.ID,
		StartedAt:   m.clipStarted,
		DurationSec: duration,
		Completed:   completed,
	})

	if idx+1 < len(m.clips) {
		if m.paused {
			m.pausePended = true
			return
		}

		m.scheduleNextClipLocked()

		return
	}

	m.transitionLocked(m.nextPhaseLocked())
}

// scheduleNextClipLocked waits out the configured gap between clips, then
// plays the next one. The gap is a true wait, not a phase change.
func (m *Machine) scheduleNextClipLocked() {
	m.pauseGen++
	gen := m.pauseGen

	gap := time.Duration(m.plan.PauseSec) * time.Second

	m.pauseTimer = time.AfterFunc(gap, func() {
		m.run(func() {
			if gen != m.pauseGen || m.paused || !m.activeLocked() {
				return
			}

			m.pauseTimer = nil
			m.clipIdx++
			m.startClipLocked()
		})
	})
}

// cancelGapTimerLocked stops a pending inter-clip gap timer, reporting
// whether one was pending.
func (m *Machine) cancelGapTimerLocked() bool {
	if m.pauseTimer == nil {
		return false
	}

	m.pauseTimer.Stop()
	m.pauseTimer = nil
	m.pauseGen++

	return true
}

func (m *Machine) nextPhaseLocked() session.Phase {
	switch m.phase {
	case session.PhaseGong:
		return session.PhaseBeforeSilent
	case session.PhaseBeforeSilent:
		return session.PhaseSilent
	case session.PhaseSilent:
		return session.PhaseAfterSilent
	default:
		return session.PhaseComplete
	}
}

// handleProgress is the player's position callback for audio phases.
func (m *Machine) handleProgress(phase session.Phase, idx int, fraction float64) {
	m.run(func() {
		if m.phase != phase || m.clipIdx != idx || m.clipDone {
			return
		}

		if fraction < 0 {
			fraction = 0
		} else if fraction > 1 {
			fraction = 1
		}

		m.setStateLocked(func(s *session.State) {
			s.Progress = fraction
			s.RemainingSec = int(
				float64(s.DurationSec) * (1 - fraction),
			)
		})
	})
}

// handleFinished is the player's completion callback. A late callback for
// a clip that already advanced is ignored.
func (m *Machine) handleFinished(phase session.Phase, idx int) {
	m.run(func() {
		if m.phase != phase || m.clipIdx != idx {
			return
		}

		m.finishClipLocked(idx, true)
	})
}

// handleTick is the countdown's 1-second tick during silent meditation.
func (m *Machine) handleTick(remainingSec int) {
	m.run(func() {
		if m.phase != session.PhaseSilent {
			return
		}

		total := m.plan.SilentSec

		progress := float64(total-remainingSec) / float64(total)
		if progress < 0 {
			progress = 0
		} else if progress > 1 {
			progress = 1
		}

		m.setStateLocked(func(s *session.State) {
			s.RemainingSec = remainingSec
			s.Progress = progress
		})
	})
}

// handleSilentComplete fires when the silent countdown reaches zero.
func (m *Machine) handleSilentComplete() {
	m.run(func() {
		if m.phase != session.PhaseSilent {
			return
		}

		m.eventLocked(session.PlaybackEvent{
			SegmentType: session.Silent,
			StartedAt:   m.phaseStarted,
			DurationSec: m.plan.SilentSec,
			Completed:   true,
		})

		m.transitionLocked(session.PhaseAfterSilent)
	})
}

// recordInterruptionLocked emits an incomplete event for whatever was in
// flight when the session was stopped.
func (m *Machine) recordInterruptionLocked() {
	switch {
	case m.phase == session.PhaseSilent:
		played := m.plan.SilentSec - m.state.RemainingSec
		if played < 0 {
			played = 0
		}

		m.eventLocked(session.PlaybackEvent{
			SegmentType: session.Silent,
			StartedAt:   m.phaseStarted,
			DurationSec: played,
			Completed:   false,
		})
	case m.activeLocked() && len(m.clips) > 0 && !m.clipDone:
		pc := m.clips[m.clipIdx]

		m.eventLocked(session.PlaybackEvent{
			SegmentType: pc.Segment,
			AudioID:     pc.Clip.ID,
			StartedAt:   m.clipStarted,
			DurationSec: int(time.Since(m.clipStarted).Seconds()),
			Completed:   false,
		})
	}
}

// haltLocked stops the player, the countdown, and any pending gap timer.
func (m *Machine) haltLocked() {
	m.cancelGapTimerLocked()
	m.pausePended = false

	if m.countdown != nil {
		m.countdown.Stop()
	}

	if m.player != nil {
		if err := m.player.Stop(); err != nil {
			slog.Debug("stopping player", slog.Any("error", err))
		}
	}
}
