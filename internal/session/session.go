// Package session defines the shared vocabulary for meditation sessions:
// segment kinds, playback phases, and the derived types exchanged between
// the timing calculator, timeline builder, and playback machine.
package session

import "time"

// SegmentType identifies a named phase of a meditation session.
type SegmentType string

const (
	OpeningChant      SegmentType = "opening_chant"
	OpeningGuidance   SegmentType = "opening_guidance"
	TechniqueReminder SegmentType = "technique_reminder"
	Metta             SegmentType = "metta"
	ClosingChant      SegmentType = "closing_chant"
	Gong              SegmentType = "gong"
	Silent            SegmentType = "silent"
)

// BeforeSilentOrder is the fixed playback order of the audio segments that
// precede silent meditation.
var BeforeSilentOrder = []SegmentType{
	OpeningChant,
	OpeningGuidance,
	TechniqueReminder,
}

// AfterSilentOrder is the fixed playback order of the audio segments that
// follow silent meditation.
var AfterSilentOrder = []SegmentType{
	Metta,
	ClosingChant,
}

// TechniqueType selects the eligible audio pool for technique reminders.
type TechniqueType string

const (
	Anapana   TechniqueType = "anapana"
	Vipassana TechniqueType = "vipassana"
)

// TimingPreference determines whether the user-chosen duration represents
// the whole session or only the silent portion.
type TimingPreference string

const (
	TimingTotal  TimingPreference = "total"
	TimingSilent TimingPreference = "silent"
)

// GongPreference selects which gong sound to play, if any.
type GongPreference string

const (
	GongNone GongPreference = "none"
	GongOne  GongPreference = "g1"
	GongTwo  GongPreference = "g2"
)

// GongDurationSec is the nominal duration of a single gong occurrence used
// for plan and preview arithmetic.
const GongDurationSec = 5

// Phase is the playback machine's notion of what is currently active.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseGong         Phase = "gong"
	PhaseBeforeSilent Phase = "before_silent"
	PhaseSilent       Phase = "silent"
	PhaseAfterSilent  Phase = "after_silent"
	PhaseComplete     Phase = "complete"
)

// Clip is a single resolvable audio clip with its known nominal duration.
type Clip struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	DurationSec int    `json:"duration_sec"`
	Random      bool   `json:"random,omitempty"`
}

// ResolvedSegment is a segment whose audio list has been resolved to
// concrete clips. A segment that resolves to zero clips contributes nothing
// to a session.
type ResolvedSegment struct {
	Type  SegmentType
	Clips []Clip
}

// DurationSec sums the clip durations of the resolved segment.
func (r ResolvedSegment) DurationSec() int {
	var total int
	for _, c := range r.Clips {
		total += c.DurationSec
	}

	return total
}

// PlannedClip is one playable entry in a session plan, tagged with the
// segment it belongs to for history reporting.
type PlannedClip struct {
	Segment SegmentType
	Clip    Clip
}

// PlanGroup is an ordered run of planned clips and their summed duration.
type PlanGroup struct {
	Clips       []PlannedClip
	DurationSec int
}

// Plan is the immutable playback plan built once per session start. It is
// owned exclusively by the playback machine for the session's lifetime.
type Plan struct {
	TotalDurationMinutes int
	BeforeSilent         PlanGroup
	SilentSec            int
	AfterSilent          PlanGroup
	Gong                 *Clip
	PauseSec             int
}

// State is the runtime snapshot emitted by the playback machine.
type State struct {
	IsPlaying      bool    `json:"is_playing"`
	CurrentSegment Phase   `json:"current_segment"`
	Progress       float64 `json:"progress"`
	RemainingSec   int     `json:"remaining_sec"`
	DurationSec    int     `json:"duration_sec"`
}

// IdleState returns the zeroed defaults the machine starts from and resets
// to on stop or completion.
func IdleState() State {
	return State{CurrentSegment: PhaseIdle}
}

// PlaybackEvent records one played clip or phase for the history store.
type PlaybackEvent struct {
	SegmentType SegmentType `json:"segment_type"`
	AudioID     string      `json:"audio_id,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	DurationSec int         `json:"duration_sec"`
	Completed   bool        `json:"completed"`
}
