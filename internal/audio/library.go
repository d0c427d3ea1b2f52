// Package audio implements the audio library: a catalog of clips scanned
// from the sounds directory, a resolver with a preload cache, and a
// beep-backed player. The library is explicitly constructed and injected;
// there is no package-level state.
package audio

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/maruel/natural"

	"github.com/ayoisaiah/sati/internal/session"
)

var supportedExtensions = []string{".mp3", ".ogg", ".flac", ".wav"}

type poolKey struct {
	segment   session.SegmentType
	technique session.TechniqueType
}

// entry is one catalog record.
type entry struct {
	clip session.Clip
}

// buffered is the playable handle handed to the player: a fully decoded
// clip in memory.
type buffered struct {
	buf    *beep.Buffer
	format beep.Format
}

// Library is the audio catalog and resolver. It satisfies both the
// timeline builder's Library interface and the playback machine's Resolver
// interface.
type Library struct {
	mu      sync.Mutex
	dir     string
	entries map[string]entry
	pools   map[poolKey][]string
	cache   map[string]*buffered
}

// NewLibrary scans dir and builds the catalog. Files that cannot be probed
// are still cataloged with a zero duration; callers fall back to declared
// segment durations for those.
func NewLibrary(dir string) (*Library, error) {
	l := &Library{
		dir:     dir,
		entries: make(map[string]entry),
		pools:   make(map[poolKey][]string),
		cache:   make(map[string]*buffered),
	}

	if err := l.scan(); err != nil {
		return nil, err
	}

	return l, nil
}

// scan walks the sounds directory. The first path element below the root
// names the segment the file belongs to.
func (l *Library) scan() error {
	if _, err := os.Stat(l.dir); os.IsNotExist(err) {
		// an empty library is valid: sessions degrade to silence
		return nil
	}

	return filepath.WalkDir(l.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !slices.Contains(supportedExtensions, ext) {
			return nil
		}

		rel, err := filepath.Rel(l.dir, path)
		if err != nil {
			return err
		}

		segment := session.SegmentType(filepath.Dir(rel))
		if !validSegmentDir(segment) {
			slog.Warn(
				"skipping audio file outside a segment directory",
				slog.String("path", path),
			)

			return nil
		}

		l.addFile(path, segment)

		return nil
	})
}

func (l *Library) addFile(path string, segment session.SegmentType) {
	stem := strings.TrimSuffix(
		filepath.Base(path),
		filepath.Ext(path),
	)

	if _, exists := l.entries[stem]; exists {
		slog.Warn(
			"duplicate audio id, keeping the first occurrence",
			slog.String("id", stem),
		)

		return
	}

	clip := session.Clip{
		ID:   stem,
		Name: readTitle(path, stem),
		Path: path,
	}

	durationSec, err := probeDuration(path)
	if err != nil {
		slog.Warn(
			"unable to probe clip duration",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	clip.DurationSec = durationSec

	l.entries[stem] = entry{clip: clip}
	l.addToPools(segment, clip)
}

// addToPools registers the clip in the random-selection pools. Technique
// reminders split into per-technique pools by filename prefix; an
// unprefixed file is eligible for both techniques.
func (l *Library) addToPools(segment session.SegmentType, clip session.Clip) {
	if segment == session.TechniqueReminder {
		techniques := []session.TechniqueType{
			session.Anapana,
			session.Vipassana,
		}

		for _, t := range techniques {
			if strings.HasPrefix(clip.ID, string(t)+"_") {
				techniques = []session.TechniqueType{t}
				break
			}
		}

		for _, t := range techniques {
			key := poolKey{segment: segment, technique: t}
			l.pools[key] = append(l.pools[key], clip.ID)
		}

		return
	}

	key := poolKey{segment: segment}
	l.pools[key] = append(l.pools[key], clip.ID)
}

// Clip returns the catalog clip for an id.
func (l *Library) Clip(id string) (session.Clip, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[id]

	return e.clip, ok
}

// Pool returns the clips eligible for random selection for a segment.
func (l *Library) Pool(
	t session.SegmentType,
	technique session.TechniqueType,
) []session.Clip {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := poolKey{segment: t}
	if t == session.TechniqueReminder {
		if technique == "" {
			technique = session.Anapana
		}

		key.technique = technique
	}

	ids := l.pools[key]

	clips := make([]session.Clip, 0, len(ids))
	for _, id := range ids {
		clips = append(clips, l.entries[id].clip)
	}

	sort.Slice(clips, func(i, j int) bool {
		return natural.Less(clips[i].ID, clips[j].ID)
	})

	return clips
}

// Clips returns every cataloged clip in natural name order.
func (l *Library) Clips() []session.Clip {
	l.mu.Lock()
	defer l.mu.Unlock()

	clips := make([]session.Clip, 0, len(l.entries))
	for _, e := range l.entries {
		clips = append(clips, e.clip)
	}

	sort.Slice(clips, func(i, j int) bool {
		return natural.Less(clips[i].Name, clips[j].Name)
	})

	return clips
}

// readTitle extracts the tagged title of the file, falling back to the
// filename stem.
func readTitle(path, fallback string) string {
	f, err := os.Open(path)
	if err != nil {
		return humanize(fallback)
	}

	defer func() {
		_ = f.Close()
	}()

	meta, err := tag.ReadFrom(f)
	if err != nil || meta.Title() == "" {
		return humanize(fallback)
	}

	return meta.Title()
}

// humanize turns a filename stem into a display name.
func humanize(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-'
	})

	for i, w := range words {
		if w == "" {
			continue
		}

		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}

func validSegmentDir(t session.SegmentType) bool {
	switch t {
	case session.OpeningChant,
		session.OpeningGuidance,
		session.TechniqueReminder,
		session.Metta,
		session.ClosingChant,
		session.Gong:
		return true
	}

	return false
}
