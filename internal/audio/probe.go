package audio

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	wavdec "github.com/go-audio/wav"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/mewkiz/flac"
	mp3frame "github.com/tcolgate/mp3"

	"github.com/ayoisaiah/sati/internal/apperr"
)

var errUnsupportedFormat = &apperr.Error{
	Message: "unsupported audio format: %s",
}

// probeDuration reads just enough of the file to determine its playing time
// in whole seconds. Sub-second remainders round up so a timeline never
// undercounts audio time.
func probeDuration(path string) (int, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		d   time.Duration
		err error
	)

	switch ext {
	case ".mp3":
		d, err = durationMP3(path)
	case ".flac":
		d, err = durationFLAC(path)
	case ".wav":
		d, err = durationWAV(path)
	case ".ogg":
		d, err = durationOgg(path)
	default:
		return 0, errUnsupportedFormat.Fmt(ext)
	}

	if err != nil {
		return 0, err
	}

	return int(math.Ceil(d.Seconds())), nil
}

// durationMP3 walks every frame of the file. MP3 carries no duration header
// so summing frame times is the only reliable measure for VBR files.
func durationMP3(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = f.Close()
	}()

	var (
		total   time.Duration
		frame   mp3frame.Frame
		skipped int
	)

	dec := mp3frame.NewDecoder(f)

	for {
		err = dec.Decode(&frame, &skipped)
		if err != nil {
			if err == io.EOF {
				break
			}

			return 0, err
		}

		total += frame.Duration()
	}

	return total, nil
}

func durationFLAC(path string) (time.Duration, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = stream.Close()
	}()

	info := stream.Info

	seconds := float64(info.NSamples) / float64(info.SampleRate)

	return time.Duration(seconds * float64(time.Second)), nil
}

func durationWAV(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = f.Close()
	}()

	return wavdec.NewDecoder(f).Duration()
}

func durationOgg(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	streamer, format, err := vorbis.Decode(f)
	if err != nil {
		_ = f.Close()
		return 0, err
	}

	defer func() {
		_ = streamer.Close()
	}()

	return format.SampleRate.D(streamer.Len()), nil
}
