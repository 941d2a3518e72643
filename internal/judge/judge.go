// Package judge matches lane input against a compiled chart and keeps the
// tally of a play.
//
// An Engine holds no locks. Tick, OnInputDown and OnInputUp must be called
// from a single goroutine.
package judge

import (
	"strconv"

	"git.lost.host/meutraa/bms/internal/game"
)

// State is where a long note is in its lifecycle.
type State uint8

const (
	Pending State = iota
	Active
	ReleasedSuccess
	ReleasedFail
	Expired
)

var stateNames = [...]string{"pending", "active", "released-success", "released-fail", "expired"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// LongNote is a long note that was started.
type LongNote struct {
	Lane  int
	Start float64
	End   float64
	State State

	// Held by auto play, released by it at End
	Auto bool
}

// Action is what produced a Result.
type Action uint8

const (
	Press Action = iota
	EmptyPress
	Miss
	Release
	Expiry
)

var actionNames = [...]string{"press", "empty-press", "miss", "release", "expiry"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "action(" + strconv.Itoa(int(a)) + ")"
}

// Result is a single judgement.
type Result struct {
	Action Action
	Now    float64
	Lane   int

	// The judged note, nil for an empty press
	Note  *game.Event
	Tier  game.Tier
	Delta float64 // offset corrected, negative is early

	// The long note after this result, nil for plain notes
	Hold *LongNote

	// Made by auto play
	Auto bool
}

// Cue is a dispatched background, layer or keysound event.
type Cue struct {
	Time    float64
	Channel int
	ID      string
}

// Handler observes an engine. It is called synchronously from the engine's
// methods.
type Handler interface {
	OnResult(r Result)
	OnCue(c Cue)
}

// Funcs adapts plain functions to a Handler. Nil functions are skipped.
type Funcs struct {
	Result func(r Result)
	Cue    func(c Cue)
}

func (f Funcs) OnResult(r Result) {
	if nil != f.Result {
		f.Result(r)
	}
}

func (f Funcs) OnCue(c Cue) {
	if nil != f.Cue {
		f.Cue(c)
	}
}

// Handlers fans out to several handlers in order.
type Handlers []Handler

func (hs Handlers) OnResult(r Result) {
	for _, h := range hs {
		h.OnResult(r)
	}
}

func (hs Handlers) OnCue(c Cue) {
	for _, h := range hs {
		h.OnCue(c)
	}
}

type Option func(e *Engine)

// WithOffset sets the judge offset in ms. A positive offset expects input
// later than the chart time.
func WithOffset(ms float64) Option {
	return func(e *Engine) {
		e.offset = ms
	}
}

func WithAutoPlay(on bool) Option {
	return func(e *Engine) {
		e.autoPlay = on
	}
}

// WithJudgements replaces the window table. An empty table is ignored.
func WithJudgements(js game.Judgements) Option {
	return func(e *Engine) {
		if len(js) > 0 {
			e.judgements = js
		}
	}
}

func WithHandler(h Handler) Option {
	return func(e *Engine) {
		if nil != h {
			e.handler = h
		}
	}
}
