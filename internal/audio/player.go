package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/ayoisaiah/sati/internal/apperr"
	"github.com/ayoisaiah/sati/internal/playback"
)

// speakerSampleRate is the fixed output rate. Clips at other rates are
// resampled on the fly.
const speakerSampleRate = beep.SampleRate(44100)

// progressInterval is how often the progress handler fires during playback.
const progressInterval = 250 * time.Millisecond

var errNotBuffered = &apperr.Error{
	Message: "source for %s is not a decoded audio buffer",
}

// BeepPlayer plays one clip at a time through the system speaker.
type BeepPlayer struct {
	mu         sync.Mutex
	id         string
	streamer   beep.StreamSeeker
	format     beep.Format
	ctrl       *beep.Ctrl
	gen        int
	playing    bool
	closed     bool
	onProgress func(fraction float64)
	onFinished func()
}

// NewBeepPlayer initializes the speaker and returns a player.
func NewBeepPlayer() (*BeepPlayer, error) {
	err := speaker.Init(
		speakerSampleRate,
		speakerSampleRate.N(100*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	return &BeepPlayer{}, nil
}

func (p *BeepPlayer) SetHandlers(
	onProgress func(fraction float64),
	onFinished func(),
) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.onProgress = onProgress
	p.onFinished = onFinished
}

// Load replaces the current clip with a fresh streamer over the decoded
// buffer. Any active playback is cleared first.
func (p *BeepPlayer) Load(id string, src playback.Source) error {
	b, ok := src.(*buffered)
	if !ok {
		return errNotBuffered.Fmt(id)
	}

	speaker.Clear()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.id = id
	p.streamer = b.buf.Streamer(0, b.buf.Len())
	p.format = b.format
	p.ctrl = nil
	p.playing = false

	return nil
}

// Play starts the loaded clip, or resumes it if paused.
func (p *BeepPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return errNotBuffered.Fmt("(none)")
	}

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()

		p.playing = true

		return nil
	}

	var s beep.Streamer = p.streamer
	if p.format.SampleRate != speakerSampleRate {
		s = beep.Resample(4, p.format.SampleRate, speakerSampleRate, s)
	}

	gen := p.gen

	// the callback runs on the speaker goroutine with its lock held, so
	// the finish notification has to leave that goroutine first
	p.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(s, beep.Callback(func() {
			go p.finished(gen)
		})),
	}
	p.playing = true

	speaker.Play(p.ctrl)

	go p.sampleProgress(gen)

	return nil
}

// Pause suspends playback, keeping the clip loaded at its position.
func (p *BeepPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return nil
	}

	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()

	p.playing = false

	return nil
}

// Stop halts playback and rewinds the clip.
func (p *BeepPlayer) Stop() error {
	speaker.Clear()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.ctrl = nil
	p.playing = false

	if p.streamer != nil {
		return p.streamer.Seek(0)
	}

	return nil
}

func (p *BeepPlayer) PositionSec() float64 {
	p.mu.Lock()
	streamer := p.streamer
	format := p.format
	p.mu.Unlock()

	if streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := streamer.Position()
	speaker.Unlock()

	return format.SampleRate.D(pos).Seconds()
}

func (p *BeepPlayer) DurationSec() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0
	}

	return p.format.SampleRate.D(p.streamer.Len()).Seconds()
}

// Close shuts the speaker down. Safe to call more than once.
func (p *BeepPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	p.gen++
	p.ctrl = nil
	p.streamer = nil

	speaker.Clear()
	speaker.Close()

	return nil
}

// sampleProgress reports the playback fraction every progressInterval until
// the clip finishes or is superseded.
func (p *BeepPlayer) sampleProgress(gen int) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()

		if p.gen != gen {
			p.mu.Unlock()
			return
		}

		if !p.playing {
			p.mu.Unlock()
			continue
		}

		streamer := p.streamer
		onProgress := p.onProgress

		p.mu.Unlock()

		if streamer == nil || onProgress == nil {
			continue
		}

		speaker.Lock()
		pos := streamer.Position()
		length := streamer.Len()
		speaker.Unlock()

		if length <= 0 {
			continue
		}

		onProgress(float64(pos) / float64(length))
	}
}

// finished runs off the speaker goroutine when the clip's samples are
// exhausted.
func (p *BeepPlayer) finished(gen int) {
	p.mu.Lock()

	if p.gen != gen {
		p.mu.Unlock()
		return
	}

	p.gen++
	p.ctrl = nil
	p.playing = false
	onFinished := p.onFinished

	p.mu.Unlock()

	if onFinished != nil {
		onFinished()
	}
}
