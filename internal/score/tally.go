package score

import (
	"math"

	"git.lost.host/meutraa/bms/internal/game"
)

// Weights is the score change for each tier.
var Weights = [game.Tiers]int64{
	game.Perfect: 1000,
	game.Great:   700,
	game.Good:    300,
	game.Bad:     -100,
	game.Poor:    -200,
	game.Miss:    -500,
}

// Tally is the running result of a play. The zero value is an empty tally.
type Tally struct {
	Score    int64
	Combo    int64
	MaxCombo int64
	Counts   [game.Tiers]int64

	// Presses that matched no note
	EmptyPresses int64
	// Long notes released too early or held past their end
	Breaks int64

	// Welford's running mean and variance of press deltas
	hits int64
	mean float64
	m2   float64
}

// Apply records a judged note.
func (t *Tally) Apply(tier game.Tier) {
	if int(tier) >= game.Tiers {
		return
	}
	t.Counts[tier]++
	t.Score += Weights[tier]
	if t.Score < 0 {
		t.Score = 0
	}
	if tier.Success() {
		t.Combo++
		if t.Combo > t.MaxCombo {
			t.MaxCombo = t.Combo
		}
	} else {
		t.Combo = 0
	}
}

// Hit records a judged press along with its corrected delta in ms.
func (t *Tally) Hit(tier game.Tier, delta float64) {
	t.Apply(tier)
	if tier == game.Miss {
		return
	}
	t.hits++
	d := delta - t.mean
	t.mean += d / float64(t.hits)
	t.m2 += d * (delta - t.mean)
}

func (t *Tally) EmptyPress() {
	t.EmptyPresses++
	t.Combo = 0
}

func (t *Tally) Break() {
	t.Breaks++
	t.Combo = 0
}

func (t *Tally) Reset() {
	*t = Tally{}
}

// Judged is the number of notes given a tier.
func (t Tally) Judged() int64 {
	var n int64
	for _, c := range t.Counts {
		n += c
	}
	return n
}

// Mean press delta in ms, negative is early.
func (t Tally) Mean() float64 {
	return t.mean
}

// StdDev is the population standard deviation of press deltas in ms.
func (t Tally) StdDev() float64 {
	if t.hits == 0 {
		return 0
	}
	return math.Sqrt(t.m2 / float64(t.hits))
}

// Distance is the offset corrected delta of an input at now against a note
// at t, in ms. Negative is early.
func Distance(now, t, offset float64) float64 {
	return (now - t) - offset
}
