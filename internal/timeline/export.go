package timeline

import (
	"fmt"
	"strings"

	"github.com/grafov/m3u8"

	"github.com/ayoisaiah/sati/internal/timeutil"
)

// ExportM3U8 encodes the playable audio entries of a timeline as an m3u8
// playlist so the sequence can be opened in an external player. Pause and
// silent entries have no media and are skipped.
func ExportM3U8(items []Item) ([]byte, error) {
	var playable []Item

	for _, item := range items {
		if item.Path == "" {
			continue
		}

		if item.IsAudio() || item.Type == ItemGong {
			playable = append(playable, item)
		}
	}

	if len(playable) == 0 {
		return nil, errNothingToExport
	}

	size := uint(len(playable))

	pl, err := m3u8.NewMediaPlaylist(size, size)
	if err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}

	for _, item := range playable {
		title := item.Label
		if item.AudioName != "" {
			title = item.AudioName
		}

		err = pl.Append(item.Path, float64(item.DurationSec), title)
		if err != nil {
			return nil, fmt.Errorf("appending %s: %w", item.Path, err)
		}
	}

	pl.Close()

	return pl.Encode().Bytes(), nil
}

// Describe renders the timeline as plain text for terminal display and
// logs. Zero-duration entries are filtered from display but remain part of
// the timeline itself.
func Describe(items []Item, durations Summary) string {
	var b strings.Builder

	n := 0

	for _, item := range items {
		if item.DurationSec == 0 {
			continue
		}

		n++

		fmt.Fprintf(
			&b,
			"%2d. %-18s %7s",
			n,
			item.Label,
			timeutil.FormatSecs(item.DurationSec),
		)

		if item.AudioName != "" && item.Type != ItemGong {
			fmt.Fprintf(&b, "  %s", item.AudioName)

			if item.Random {
				b.WriteString(" (random)")
			}
		}

		b.WriteString("\n")
	}

	fmt.Fprintf(
		&b,
		"total %s | audio %s | gong %s | pauses %s | silent %s\n",
		timeutil.FormatSecs(durations.TotalSec),
		timeutil.FormatSecs(durations.AudioSec),
		timeutil.FormatSecs(durations.GongSec),
		timeutil.FormatSecs(durations.PauseSec),
		timeutil.FormatSecs(durations.SilentSec),
	)

	return b.String()
}
