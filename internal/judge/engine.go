package judge

import (
	"sort"

	"git.lost.host/meutraa/bms/internal/game"
	"git.lost.host/meutraa/bms/internal/score"
)

// Engine judges one chart. Times are in ms on the chart's timeline.
type Engine struct {
	chart      *game.Chart
	judgements game.Judgements
	offset     float64
	autoPlay   bool
	handler    Handler

	now   float64
	lanes [game.Lanes + 1]arena
	holds map[int]*LongNote

	cues       []*game.Event
	nextCue    int
	background string
	layers     map[int]string

	tally score.Tally
}

func New(chart *game.Chart, opts ...Option) *Engine {
	e := &Engine{
		chart:      chart,
		judgements: game.DefaultJudgements,
		handler:    Funcs{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Reset rewinds to time 0 with every note pending, no long notes held, no
// cues dispatched and an empty tally.
func (e *Engine) Reset() {
	e.now = 0
	for i := range e.lanes {
		e.lanes[i].reset()
	}
	e.holds = map[int]*LongNote{}
	e.cues = []*game.Event{}
	e.nextCue = 0
	e.background = ""
	e.layers = map[int]string{}
	e.tally.Reset()

	if nil == e.chart {
		return
	}
	for _, ev := range e.chart.Events {
		switch {
		case ev.Playable() && game.ValidLane(ev.Lane):
			e.lanes[ev.Lane].push(ev)
		case ev.Kind == game.BackgroundCue || ev.Kind == game.LayerCue:
			e.cues = append(e.cues, ev)
		}
	}
}

// Tick moves the engine to now. Calling it again with the same time
// changes nothing.
func (e *Engine) Tick(now float64) {
	e.now = now
	if e.autoPlay {
		e.play()
	}
	e.sweep()
	e.expire()
	e.dispatch()
}

// play presses every note that has reached its time, in time order, and
// releases auto held long notes at their end.
func (e *Engine) play() {
	type slot struct {
		lane, index int
		note        *game.Event
	}
	due := []slot{}
	for lane := 1; lane <= game.Lanes; lane++ {
		for i, en := range e.lanes[lane].entries {
			if en.note.Time > e.now {
				break
			}
			if !en.judged {
				due = append(due, slot{lane, i, en.note})
			}
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].note.Time < due[j].note.Time
	})

	for _, d := range due {
		note := d.note
		e.releaseAuto(d.lane, note.Time)
		e.lanes[d.lane].kill(d.index)
		e.tally.Hit(game.Perfect, 0)
		r := Result{Action: Press, Now: e.now, Lane: d.lane, Note: note, Tier: game.Perfect, Auto: true}
		if _, held := e.holds[d.lane]; !held && note.Kind == game.LongNoteStart && nil != note.End {
			hold := &LongNote{Lane: d.lane, Start: note.Time, End: note.End.Time, State: Active, Auto: true}
			e.holds[d.lane] = hold
			r.Hold = snapshot(hold)
		}
		e.handler.OnResult(r)
	}
	for lane := 1; lane <= game.Lanes; lane++ {
		e.releaseAuto(lane, e.now)
		e.lanes[lane].compact()
	}
}

func (e *Engine) releaseAuto(lane int, at float64) {
	hold, ok := e.holds[lane]
	if !ok || !hold.Auto || hold.End > at {
		return
	}
	hold.State = ReleasedSuccess
	delete(e.holds, lane)
	e.handler.OnResult(Result{Action: Release, Now: e.now, Lane: lane, Tier: game.Perfect, Hold: snapshot(hold), Auto: true})
}

// sweep misses every note that can no longer be hit. Notes auto play has
// yet to reach are its own whatever the offset.
func (e *Engine) sweep() {
	for lane := 1; lane <= game.Lanes; lane++ {
		a := &e.lanes[lane]
		for i, en := range a.entries {
			if en.judged {
				continue
			}
			if e.autoPlay && en.note.Time > e.now {
				break
			}
			delta := score.Distance(e.now, en.note.Time, e.offset)
			if delta <= 0 || e.judgements.Within(delta) {
				break
			}
			a.kill(i)
			e.tally.Apply(game.Miss)
			r := Result{Action: Miss, Now: e.now, Lane: lane, Note: en.note, Tier: game.Miss, Delta: delta}
			if en.note.Kind == game.LongNoteStart && nil != en.note.End {
				r.Hold = &LongNote{Lane: lane, Start: en.note.Time, End: en.note.End.Time, State: Expired}
			}
			e.handler.OnResult(r)
		}
		a.compact()
	}
}

// expire fails long notes held past their end. Auto play releases its own.
func (e *Engine) expire() {
	for lane := 1; lane <= game.Lanes; lane++ {
		hold, ok := e.holds[lane]
		if !ok || hold.Auto {
			continue
		}
		delta := score.Distance(e.now, hold.End, e.offset)
		if delta <= 0 || e.judgements.Within(delta) {
			continue
		}
		hold.State = ReleasedFail
		delete(e.holds, lane)
		e.tally.Break()
		e.handler.OnResult(Result{Action: Expiry, Now: e.now, Lane: lane, Tier: game.Miss, Delta: delta, Hold: snapshot(hold)})
	}
}

// dispatch hands every cue that has reached its time to the handler once.
func (e *Engine) dispatch() {
	for e.nextCue < len(e.cues) && e.cues[e.nextCue].Time <= e.now {
		cue := e.cues[e.nextCue]
		e.cues[e.nextCue] = nil
		e.nextCue++

		switch cue.Channel {
		case game.ChannelBGA:
			e.background = cue.ID
		case game.ChannelBGAPoor, game.ChannelBGALayer, game.ChannelBGALayer2:
			e.layers[cue.Channel] = cue.ID
		}
		e.handler.OnCue(Cue{Time: cue.Time, Channel: cue.Channel, ID: cue.ID})
	}
}

// OnInputDown presses a lane at the current time. Out of range lanes,
// lanes holding a long note and input during auto play are ignored.
func (e *Engine) OnInputDown(lane int) {
	if !game.ValidLane(lane) || e.autoPlay {
		return
	}
	if _, held := e.holds[lane]; held {
		return
	}

	a := &e.lanes[lane]
	i, delta, ok := a.nearest(e.now, e.offset, e.judgements)
	tier := game.Miss
	if ok {
		tier = e.judgements.Classify(delta)
	}
	if tier == game.Miss {
		e.tally.EmptyPress()
		e.handler.OnResult(Result{Action: EmptyPress, Now: e.now, Lane: lane, Tier: game.Miss})
		return
	}

	note := a.entries[i].note
	a.kill(i)
	a.compact()
	e.tally.Hit(tier, delta)

	r := Result{Action: Press, Now: e.now, Lane: lane, Note: note, Tier: tier, Delta: delta}
	if note.Kind == game.LongNoteStart && nil != note.End && tier.Success() {
		hold := &LongNote{Lane: lane, Start: note.Time, End: note.End.Time, State: Active}
		e.holds[lane] = hold
		r.Hold = snapshot(hold)
	}
	e.handler.OnResult(r)
}

// OnInputUp releases a lane. Only a held long note cares.
func (e *Engine) OnInputUp(lane int) {
	if e.autoPlay {
		return
	}
	hold, ok := e.holds[lane]
	if !ok {
		return
	}
	delete(e.holds, lane)

	delta := score.Distance(e.now, hold.End, e.offset)
	tier := e.judgements.Classify(delta)
	if tier.Success() {
		hold.State = ReleasedSuccess
	} else {
		hold.State = ReleasedFail
		e.tally.Break()
	}
	e.handler.OnResult(Result{Action: Release, Now: e.now, Lane: lane, Tier: tier, Delta: delta, Hold: snapshot(hold)})
}

func (e *Engine) SetOffset(ms float64) {
	e.offset = ms
}

// SetAutoPlay switches auto play. Long notes already held are handed over
// to whoever plays next, nothing judged is undone.
func (e *Engine) SetAutoPlay(on bool) {
	e.autoPlay = on
	for _, hold := range e.holds {
		hold.Auto = on
	}
}

func (e *Engine) Now() float64 {
	return e.now
}

func (e *Engine) Offset() float64 {
	return e.offset
}

func (e *Engine) AutoPlay() bool {
	return e.autoPlay
}

func (e *Engine) Chart() *game.Chart {
	return e.chart
}

func (e *Engine) Judgements() game.Judgements {
	return e.judgements
}

func (e *Engine) Tally() score.Tally {
	return e.tally
}

// Active is the long note held in a lane.
func (e *Engine) Active(lane int) (LongNote, bool) {
	hold, ok := e.holds[lane]
	if !ok {
		return LongNote{}, false
	}
	return *hold, true
}

// Background is the id of the current background image, "" before the
// first one.
func (e *Engine) Background() string {
	return e.background
}

// Layers maps layer channels to the id last shown on them.
func (e *Engine) Layers() map[int]string {
	layers := make(map[int]string, len(e.layers))
	for k, v := range e.layers {
		layers[k] = v
	}
	return layers
}

// Pending is the number of notes not yet judged.
func (e *Engine) Pending() int {
	n := 0
	for i := range e.lanes {
		n += e.lanes[i].live()
	}
	return n
}

func snapshot(hold *LongNote) *LongNote {
	h := *hold
	return &h
}
