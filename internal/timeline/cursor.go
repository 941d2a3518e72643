package timeline

import (
	"git.lost.host/meutraa/bms/internal/game"
)

// cursor walks a chart in (measure, position) order and knows the absolute
// time of any position at or after the last directive it applied.
//
// Inside a measure, time is anchored at the last tempo change or pause:
//
//	t(p) = anchorTime + (p - anchorPos) * measureDuration(bpm, multiplier)
//
// so a tempo change never moves anything placed before it.
type cursor struct {
	decoded *game.Decoded

	measure    int
	anchorTime float64
	anchorPos  float64
	bpm        float64
	multiplier float64

	// called for directives that cannot be applied
	invalid func(e *game.Event, reason string)
}

func newCursor(d *game.Decoded, bpm float64) *cursor {
	return &cursor{
		decoded:    d,
		bpm:        bpm,
		multiplier: d.Multiplier(0),
		invalid:    func(*game.Event, string) {},
	}
}

func (c *cursor) duration() float64 {
	return game.MeasureDuration(c.bpm, c.multiplier)
}

func (c *cursor) at(pos float64) float64 {
	return c.anchorTime + (pos-c.anchorPos)*c.duration()
}

// seek moves to the start of measure, adding the full length of every
// measure passed on the way, empty ones included.
func (c *cursor) seek(measure int) {
	for c.measure < measure {
		c.anchorTime = c.at(1)
		c.anchorPos = 0
		c.measure++
		c.multiplier = c.decoded.Multiplier(c.measure)
	}
}

// apply lets a directive change the timeline. The cursor must already be
// in the event's measure.
func (c *cursor) apply(e *game.Event) {
	switch e.Kind {
	case game.TempoChange:
		bpm, ok := c.tempo(e.ID)
		if !ok {
			c.invalid(e, "unknown tempo")
			return
		}
		c.anchorTime = c.at(e.Position)
		c.anchorPos = e.Position
		c.bpm = bpm
	case game.Pause:
		beats, ok := c.decoded.Pauses[e.ID]
		if !ok || beats <= 0 {
			c.invalid(e, "unknown pause")
			return
		}
		c.anchorTime += beats * game.BeatDuration(c.bpm)
	}
}

// Tempo ids point into the #BPMxx table, ids missing from it are read as
// an inline hex tempo.
func (c *cursor) tempo(id string) (float64, bool) {
	if bpm, ok := c.decoded.Tempos[id]; ok && bpm > 0 {
		return bpm, true
	}
	if v := game.HexValue(id); v > 0 {
		return float64(v), true
	}
	return 0, false
}
