package render

import (
	"fmt"
	"math"

	"git.lost.host/meutraa/bms/internal/game"
	"git.lost.host/meutraa/bms/internal/judge"
	"git.lost.host/meutraa/bms/internal/score"
	"git.lost.host/meutraa/bms/internal/theme"
)

// View is what the playfield reads from a play every frame.
type View interface {
	CurrentTime() float64
	Tally() score.Tally
	Active(lane int) (judge.LongNote, bool)
	Title() string
	Artist() string
	AutoPlay() bool
	JudgeOffset() float64
	Pending() int
}

// Scratch first, the keys, then the pedal
var laneOrder = [game.Lanes]int{6, 1, 2, 3, 4, 5, 8, 9, 7}

const flashMs = 400.0

type key struct {
	lane int
	time float64
}

// Playfield scrolls the notes of a chart towards a hit bar. It follows the
// judge as a handler to hide notes once judged. Draw and the handler must
// be called from the goroutine driving the play.
type Playfield struct {
	Theme       theme.Theme
	Rows        int
	Columns     int
	BarRow      int     // rows above the bottom
	ScrollSpeed float64 // ms per row
	Spacing     int

	notes  []game.Placement
	judged map[key]bool

	flash      string
	flashUntil float64
}

func NewPlayfield(th theme.Theme, placements []game.Placement, rows, columns, barRow int, scrollSpeed float64) *Playfield {
	notes := make([]game.Placement, 0, len(placements))
	for _, p := range placements {
		if !p.LongNoteEnd {
			notes = append(notes, p)
		}
	}
	return &Playfield{
		Theme:       th,
		Rows:        rows,
		Columns:     columns,
		BarRow:      barRow,
		ScrollSpeed: scrollSpeed,
		Spacing:     3,
		notes:       notes,
		judged:      map[key]bool{},
	}
}

func (p *Playfield) OnResult(r judge.Result) {
	switch r.Action {
	case judge.Press, judge.Miss:
		if nil != r.Note {
			p.judged[key{r.Lane, r.Note.Time}] = true
		}
	case judge.Expiry:
		p.judged[key{r.Lane, r.Hold.Start}] = true
	}
	if r.Action == judge.Release && r.Tier.Success() {
		return
	}
	p.flash = fmt.Sprintf("%v %+6.1fms", p.Theme.RenderJudgement(r.Tier), r.Delta)
	p.flashUntil = r.Now + flashMs
}

func (p *Playfield) OnCue(judge.Cue) {}

// Bar is the terminal row of the hit bar.
func (p *Playfield) Bar() int {
	return p.Rows - p.BarRow
}

// Row is where a note at t sits at now, rows grow downwards.
func (p *Playfield) Row(t, now float64) int {
	return p.Bar() - int(math.Round((t-now)/p.ScrollSpeed))
}

// Column of a lane, 0 for lanes that are not drawn.
func (p *Playfield) Column(lane int) int {
	left := p.Columns/2 - p.Spacing*len(laneOrder)/2
	for i, l := range laneOrder {
		if l == lane {
			return left + i*p.Spacing
		}
	}
	return 0
}

func (p *Playfield) inField(row int) bool {
	return row >= 1 && row <= p.Rows
}

func (p *Playfield) Draw(r Renderer, v View) {
	now := v.CurrentTime()
	bar := p.Bar()

	for _, lane := range laneOrder {
		col := p.Column(lane)
		for row := 1; row <= p.Rows; row++ {
			r.Fill(row, col, " ")
		}
		r.Fill(bar, col, p.Theme.RenderHitField(lane))
	}

	for _, n := range p.notes {
		head := p.Row(n.Time, now)
		if head < 1 {
			break
		}
		col := p.Column(n.Lane)
		if hold, ok := v.Active(n.Lane); ok && hold.Start == n.Time {
			p.body(r, n.Lane, col, bar, p.Row(hold.End, now))
			r.Fill(bar, col, p.Theme.RenderNote(n.Lane))
			continue
		}
		if p.judged[key{n.Lane, n.Time}] {
			continue
		}
		if n.LongNote {
			p.body(r, n.Lane, col, head, p.Row(n.Time+n.Duration, now))
		}
		if p.inField(head) {
			r.Fill(head, col, p.Theme.RenderNote(n.Lane))
		}
	}

	side := p.Column(laneOrder[len(laneOrder)-1]) + 6
	if now < p.flashUntil {
		r.Fill(bar-p.Rows/4, side, p.flash)
	}
	p.hud(r, v, side)
}

// body draws a long note between two rows, exclusive.
func (p *Playfield) body(r Renderer, lane, col, from, to int) {
	for row := from - 1; row > to; row-- {
		if p.inField(row) {
			r.Fill(row, col, p.Theme.RenderLongNote(lane))
		}
	}
}

func (p *Playfield) hud(r Renderer, v View, col int) {
	t := v.Tally()
	lines := []string{
		v.Title(),
		v.Artist(),
		"",
		fmt.Sprintf("      Score:  %8v", t.Score),
		fmt.Sprintf("      Combo:  %8v", t.Combo),
		fmt.Sprintf("  Max Combo:  %8v", t.MaxCombo),
		fmt.Sprintf("       Mean:  %8.2f", t.Mean()),
		fmt.Sprintf("      Stdev:  %8.2f", t.StdDev()),
		fmt.Sprintf("     Offset:  %8.1f", v.JudgeOffset()),
		fmt.Sprintf("       Left:  %8v", v.Pending()),
		"",
	}
	for tier := game.Perfect; int(tier) < game.Tiers; tier++ {
		lines = append(lines, fmt.Sprintf("%v:  %6v", p.Theme.RenderJudgement(tier), t.Counts[tier]))
	}
	lines = append(lines, fmt.Sprintf("      Empty:  %6v", t.EmptyPresses))
	if v.AutoPlay() {
		lines = append(lines, "", "  AUTO PLAY")
	}
	for i, line := range lines {
		r.Fill(2+i, col, line+"\033[K")
	}
}
