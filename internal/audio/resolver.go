package audio

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	beepflac "github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/ayoisaiah/sati/internal/apperr"
	"github.com/ayoisaiah/sati/internal/playback"
)

var errUnknownAudioID = &apperr.Error{
	Message: "no audio file matches id: %s",
}

// Resolve returns the playable handle for an audio id, decoding the file
// into memory on first use. Subsequent resolutions of the same id reuse
// the cached buffer.
func (l *Library) Resolve(id string) (playback.Source, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.resolveLocked(id)
}

func (l *Library) resolveLocked(id string) (playback.Source, error) {
	if b, ok := l.cache[id]; ok {
		return b, nil
	}

	e, ok := l.entries[id]
	if !ok {
		return nil, errUnknownAudioID.Fmt(id)
	}

	b, err := decodeFile(e.clip.Path)
	if err != nil {
		return nil, err
	}

	l.cache[id] = b

	return b, nil
}

// PreloadAll decodes every cataloged clip into memory. Failures are logged
// and skipped so one unreadable file does not block a session.
func (l *Library) PreloadAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id := range l.entries {
		if _, err := l.resolveLocked(id); err != nil {
			slog.Warn(
				"unable to preload audio clip",
				slog.String("id", id),
				slog.Any("error", err),
			)
		}
	}
}

// IsPreloaded reports whether the clip is decoded and ready for immediate
// playback.
func (l *Library) IsPreloaded(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.cache[id]

	return ok
}

// Cleanup drops all decoded buffers.
func (l *Library) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache = make(map[string]*buffered)
}

// decodeFile decodes the entire file into a seekable in-memory buffer.
func decodeFile(path string) (*buffered, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)

	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".flac":
		streamer, format, err = beepflac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		_ = f.Close()
		return nil, errUnsupportedFormat.Fmt(ext)
	}

	if err != nil {
		_ = f.Close()
		return nil, err
	}

	defer func() {
		_ = streamer.Close()
	}()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)

	return &buffered{buf: buf, format: format}, nil
}
