package judge

import (
	"math"

	"git.lost.host/meutraa/bms/internal/game"
	"git.lost.host/meutraa/bms/internal/score"
)

type entry struct {
	note   *game.Event
	judged bool
}

// arena holds the notes of one lane in time order. Judged notes are
// tombstoned and removed once they make up more than half of the arena.
type arena struct {
	entries []entry
	dead    int
}

func (a *arena) push(note *game.Event) {
	a.entries = append(a.entries, entry{note: note})
}

func (a *arena) kill(i int) {
	if a.entries[i].judged {
		return
	}
	a.entries[i].judged = true
	a.dead++
}

func (a *arena) live() int {
	return len(a.entries) - a.dead
}

// compact drops tombstones when they outnumber live entries. Indexes are
// only stable between calls to compact.
func (a *arena) compact() {
	if a.dead*2 <= len(a.entries) {
		return
	}
	kept := a.entries[:0]
	for _, en := range a.entries {
		if !en.judged {
			kept = append(kept, en)
		}
	}
	for i := len(kept); i < len(a.entries); i++ {
		a.entries[i] = entry{}
	}
	a.entries = kept
	a.dead = 0
}

// nearest finds the unjudged note closest to now inside the widest window.
// On a tie the earlier note wins.
func (a *arena) nearest(now, offset float64, js game.Judgements) (int, float64, bool) {
	index, delta := -1, 0.0
	best := math.Inf(1)
	for i, en := range a.entries {
		if en.judged {
			continue
		}
		d := score.Distance(now, en.note.Time, offset)
		abs := math.Abs(d)
		if abs < best && js.Within(d) {
			index, delta, best = i, d, abs
		} else if index >= 0 || (d < 0 && !js.Within(d)) {
			// Later notes are only further away
			break
		}
	}
	return index, delta, index >= 0
}

func (a *arena) reset() {
	a.entries = nil
	a.dead = 0
}
