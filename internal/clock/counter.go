// Package clock derives the play position from the audio that has been
// handed to the speaker.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
)

// Counter is a beep.Streamer that counts the samples streamed through it.
// The speaker pulls from it on its own goroutine while the game loop reads
// the position, so the count is atomic.
type Counter struct {
	Streamer   beep.Streamer
	SampleRate beep.SampleRate

	samples atomic.Int64
}

func New(s beep.Streamer, sr beep.SampleRate) *Counter {
	return &Counter{Streamer: s, SampleRate: sr}
}

func (c *Counter) Stream(samples [][2]float64) (int, bool) {
	n, ok := c.Streamer.Stream(samples)
	c.samples.Add(int64(n))
	return n, ok
}

func (c *Counter) Err() error {
	return c.Streamer.Err()
}

// Samples streamed so far
func (c *Counter) Samples() int64 {
	return c.samples.Load()
}

// Position is the time of audio streamed so far.
func (c *Counter) Position() time.Duration {
	return c.SampleRate.D(int(c.samples.Load()))
}

// Millis is the position in ms, the unit of the chart timeline.
func (c *Counter) Millis() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.samples.Load()) * 1000 / float64(c.SampleRate)
}

// Reset starts counting from zero again.
func (c *Counter) Reset() {
	c.samples.Store(0)
}
