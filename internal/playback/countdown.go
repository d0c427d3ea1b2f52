package playback

import (
	"sync"
	"time"
)

// TickerCountdown is a Countdown backed by a time.Ticker. Pausing halts the
// ticker goroutine and preserves the remaining time; resuming starts a new
// one.
type TickerCountdown struct {
	mu         sync.Mutex
	remaining  int
	running    bool
	halt       chan struct{}
	onTick     func(remainingSec int)
	onComplete func()
}

// NewTickerCountdown returns a stopped countdown.
func NewTickerCountdown() *TickerCountdown {
	return &TickerCountdown{}
}

func (c *TickerCountdown) SetHandlers(
	onTick func(remainingSec int),
	onComplete func(),
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onTick = onTick
	c.onComplete = onComplete
}

func (c *TickerCountdown) Start(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.haltLocked()

	if seconds <= 0 {
		go c.complete()
		return
	}

	c.remaining = seconds
	c.runLocked()
}

func (c *TickerCountdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.haltLocked()
}

func (c *TickerCountdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.remaining <= 0 {
		return
	}

	c.runLocked()
}

func (c *TickerCountdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.haltLocked()
	c.remaining = 0
}

// Remaining reports the seconds left on the countdown.
func (c *TickerCountdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.remaining
}

// runLocked spawns the ticking goroutine. Caller holds the lock.
func (c *TickerCountdown) runLocked() {
	halt := make(chan struct{})
	c.halt = halt
	c.running = true

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-halt:
				return
			case <-ticker.C:
				if !c.tick(halt) {
					return
				}
			}
		}
	}()
}

// tick decrements the countdown by one second and fires the callbacks. It
// reports whether the goroutine should keep ticking.
func (c *TickerCountdown) tick(halt chan struct{}) bool {
	c.mu.Lock()

	// a Pause/Stop raced with this tick
	if c.halt != halt {
		c.mu.Unlock()
		return false
	}

	c.remaining--
	remaining := c.remaining
	onTick := c.onTick
	onComplete := c.onComplete

	if remaining <= 0 {
		c.running = false
		c.halt = nil
	}

	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}

	if remaining <= 0 {
		if onComplete != nil {
			onComplete()
		}

		return false
	}

	return true
}

func (c *TickerCountdown) complete() {
	c.mu.Lock()
	onComplete := c.onComplete
	c.mu.Unlock()

	if onComplete != nil {
		onComplete()
	}
}

// haltLocked stops the ticking goroutine if one is running. Caller holds
// the lock.
func (c *TickerCountdown) haltLocked() {
	if c.halt != nil {
		close(c.halt)
		c.halt = nil
	}

	c.running = false
}
