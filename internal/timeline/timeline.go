// Package timeline resolves a session configuration into the ordered,
// time-bounded item list a user previews, and into the playback plan the
// session machine runs. Random segments are resolved here, once, through an
// injected random source.
package timeline

import (
	"math/rand"
	"time"

	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/session"
	"github.com/ayoisaiah/sati/internal/timing"
)

// Library is the catalog the builder resolves audio ids against.
type Library interface {
	// Clip returns the clip for the given id, if known.
	Clip(id string) (session.Clip, bool)

	// Pool returns the clips eligible for random selection for a segment,
	// filtered by technique where applicable.
	Pool(t session.SegmentType, technique session.TechniqueType) []session.Clip
}

// ItemType tags a timeline entry: an audio segment kind, or one of the
// synthetic pause/gong/silent entries.
type ItemType string

const (
	ItemGong   ItemType = "gong"
	ItemPause  ItemType = "pause"
	ItemSilent ItemType = "silent"
)

// Item is one discrete entry in the precomputed preview sequence.
type Item struct {
	Type        ItemType `json:"type"`
	Label       string   `json:"label"`
	DurationSec int      `json:"duration_sec"`
	AudioID     string   `json:"audio_id,omitempty"`
	AudioName   string   `json:"audio_name,omitempty"`
	Path        string   `json:"-"`
	Random      bool     `json:"random,omitempty"`
}

// IsAudio reports whether the item is an audio clip belonging to one of the
// before/after-silent segments.
func (i Item) IsAudio() bool {
	switch i.Type {
	case ItemGong, ItemPause, ItemSilent:
		return false
	}

	return true
}

// Summary is the per-category duration breakdown of a timeline.
type Summary struct {
	TotalSec  int `json:"total_sec"`
	AudioSec  int `json:"audio_sec"`
	GongSec   int `json:"gong_sec"`
	PauseSec  int `json:"pause_sec"`
	SilentSec int `json:"silent_sec"`
}

var labels = map[session.SegmentType]string{
	session.OpeningChant:      "Opening Chant",
	session.OpeningGuidance:   "Opening Guidance",
	session.TechniqueReminder: "Technique Reminder",
	session.Metta:             "Metta",
	session.ClosingChant:      "Closing Chant",
	session.Gong:              "Gong",
	session.Silent:            "Silent Meditation",
}

// Label returns the display label for a segment type.
func Label(t session.SegmentType) string {
	if l, ok := labels[t]; ok {
		return l
	}

	return string(t)
}

// NewRand returns the random source used for random-segment resolution.
// A zero seed yields a time-seeded source.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return rand.New(rand.NewSource(seed))
}

// ResolveSegments resolves the enabled segments in the given fixed order to
// concrete clips. Unresolvable ids are omitted, a random segment resolves
// to exactly one clip from its pool, and a clip with an unknown duration
// falls back to the segment's declared duration.
func ResolveSegments(
	snap *config.Snapshot,
	lib Library,
	rng *rand.Rand,
	order []session.SegmentType,
) []session.ResolvedSegment {
	var resolved []session.ResolvedSegment

	for _, t := range order {
		seg := snap.Segment(t)
		if !seg.Enabled {
			continue
		}

		resolved = append(resolved, session.ResolvedSegment{
			Type:  t,
			Clips: resolveClips(seg, lib, rng),
		})
	}

	return resolved
}

func resolveClips(
	seg config.SegmentConfig,
	lib Library,
	rng *rand.Rand,
) []session.Clip {
	if lib == nil {
		return nil
	}

	if seg.Random {
		pool := lib.Pool(seg.Type, seg.Technique)
		if len(pool) == 0 {
			return nil
		}

		clip := pool[rng.Intn(len(pool))]
		clip.Random = true

		if clip.DurationSec == 0 {
			clip.DurationSec = seg.DurationSec
		}

		return []session.Clip{clip}
	}

	var clips []session.Clip

	for _, id := range seg.SelectedAudioIDs {
		clip, ok := lib.Clip(id)
		if !ok {
			// no retry, no recovery: the clip is simply omitted
			continue
		}

		if clip.DurationSec == 0 {
			clip.DurationSec = seg.DurationSec
		}

		clips = append(clips, clip)
	}

	return clips
}

// Build produces the full preview timeline and the durations it was built
// from. The walk mirrors timing.Calculate exactly, so summing the items by
// category always reproduces the calculator's fields.
func Build(
	snap *config.Snapshot,
	lib Library,
	rng *rand.Rand,
) ([]Item, timing.Durations) {
	before := ResolveSegments(snap, lib, rng, session.BeforeSilentOrder)
	after := ResolveSegments(snap, lib, rng, session.AfterSilentOrder)

	durations := timing.Calculate(snap.Prefs, before, after)

	gongClip, gong := resolveGong(snap, lib)

	var (
		items     []Item
		needPause bool
	)

	pushPause := func() {
		if !needPause {
			return
		}

		items = append(items, Item{
			Type:        ItemPause,
			Label:       "Pause",
			DurationSec: snap.Prefs.PauseDurationSec,
		})
	}

	pushClips := func(segs []session.ResolvedSegment) {
		for _, seg := range segs {
			for _, clip := range seg.Clips {
				pushPause()

				items = append(items, Item{
					Type:        ItemType(seg.Type),
					Label:       Label(seg.Type),
					DurationSec: clip.DurationSec,
					AudioID:     clip.ID,
					AudioName:   clip.Name,
					Path:        clip.Path,
					Random:      clip.Random,
				})

				needPause = true
			}
		}
	}

	gongItem := func() Item {
		item := Item{
			Type:        ItemGong,
			Label:       Label(session.Gong),
			DurationSec: session.GongDurationSec,
		}

		if gongClip != nil {
			item.AudioID = gongClip.ID
			item.AudioName = gongClip.Name
			item.Path = gongClip.Path
		}

		return item
	}

	if gong {
		items = append(items, gongItem())
		needPause = true
	}

	pushClips(before)

	if durations.SilentSec > 0 {
		items = append(items, Item{
			Type:        ItemSilent,
			Label:       Label(session.Silent),
			DurationSec: durations.SilentSec,
		})
		needPause = false
	}

	pushClips(after)

	if gong {
		pushPause()
		items = append(items, gongItem())
	}

	return items, durations
}

// resolveGong reports whether a gong plays and resolves its clip when the
// library knows it. The gong plays even when its clip cannot be resolved
// for preview purposes; the machine surfaces the resolver miss at runtime.
func resolveGong(snap *config.Snapshot, lib Library) (*session.Clip, bool) {
	id := snap.GongClipID()
	if id == "" {
		return nil, false
	}

	if lib == nil {
		return nil, true
	}

	clip, ok := lib.Clip(id)
	if !ok {
		return nil, true
	}

	// nominal plan duration, regardless of the probed file length
	clip.DurationSec = session.GongDurationSec

	return &clip, true
}

// Summarize sums the timeline items by category.
func Summarize(items []Item) Summary {
	var s Summary

	for _, item := range items {
		s.TotalSec += item.DurationSec

		switch item.Type {
		case ItemGong:
			s.GongSec += item.DurationSec
		case ItemPause:
			s.PauseSec += item.DurationSec
		case ItemSilent:
			s.SilentSec += item.DurationSec
		default:
			s.AudioSec += item.DurationSec
		}
	}

	return s
}

// BuildPlan derives the immutable playback plan the session machine owns
// for the lifetime of one session.
func BuildPlan(
	snap *config.Snapshot,
	lib Library,
	rng *rand.Rand,
) (*session.Plan, timing.Durations) {
	before := ResolveSegments(snap, lib, rng, session.BeforeSilentOrder)
	after := ResolveSegments(snap, lib, rng, session.AfterSilentOrder)

	durations := timing.Calculate(snap.Prefs, before, after)

	plan := &session.Plan{
		TotalDurationMinutes: snap.Prefs.TotalDurationMinutes,
		BeforeSilent:         planGroup(before),
		SilentSec:            durations.SilentSec,
		AfterSilent:          planGroup(after),
		PauseSec:             snap.Prefs.PauseDurationSec,
	}

	if gongClip, gong := resolveGong(snap, lib); gong {
		if gongClip == nil {
			// keep the id so the machine can report the resolver miss
			gongClip = &session.Clip{
				ID:          snap.GongClipID(),
				Name:        Label(session.Gong),
				DurationSec: session.GongDurationSec,
			}
		}

		plan.Gong = gongClip
	}

	return plan, durations
}

func planGroup(segs []session.ResolvedSegment) session.PlanGroup {
	var group session.PlanGroup

	for _, seg := range segs {
		for _, clip := range seg.Clips {
			group.Clips = append(group.Clips, session.PlannedClip{
				Segment: seg.Type,
				Clip:    clip,
			})
			group.DurationSec += clip.DurationSec
		}
	}

	return group
}
