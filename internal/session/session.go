// Package session is the runtime surface a host drives: it loads a chart,
// follows the audio clock and forwards lane input to the judge.
package session

import (
	"log/slog"
	"path/filepath"

	"git.lost.host/meutraa/bms/internal/audio"
	"git.lost.host/meutraa/bms/internal/game"
	"git.lost.host/meutraa/bms/internal/judge"
	"git.lost.host/meutraa/bms/internal/parser"
	"git.lost.host/meutraa/bms/internal/score"
	"git.lost.host/meutraa/bms/internal/timeline"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNoChart  = errors.New("no chart loaded")
	ErrNoScorer = errors.New("no scorer configured")
	ErrAutoPlay = errors.New("play used auto play")
)

type Options struct {
	Logger *slog.Logger

	// Strict rejects charts with unmatched long notes
	Strict bool

	// Judgements replaces the default window table when not empty
	Judgements game.Judgements

	// Handler observes every judgement and cue
	Handler judge.Handler

	// Scorer keeps plays for Save and Replay
	Scorer score.Scorer

	Parser parser.Parser
}

// Session is not safe for concurrent use, one goroutine drives it.
type Session struct {
	log    *slog.Logger
	opts   Options
	parser parser.Parser

	chart  *game.Chart
	dir    string
	engine *judge.Engine

	offset   float64
	autoPlay bool

	now      float64
	clock    float64
	clockSet bool

	inputs []game.Input

	// Auto play was on at some point of the play, it cannot be replayed
	autoUsed bool
}

func New(opts Options) *Session {
	log := opts.Logger
	if nil == log {
		log = slog.New(slog.DiscardHandler)
	}
	p := opts.Parser
	if nil == p {
		p = &parser.DefaultParser{Logger: log}
	}
	return &Session{log: log, opts: opts, parser: p}
}

// LoadChart compiles d and starts a fresh play of it. initialTempo
// overrides the chart's #BPM when positive. On failure the previous chart
// and play are kept.
func (s *Session) LoadChart(d *game.Decoded, initialTempo float64) error {
	return s.load(d, initialTempo, "")
}

// LoadFile reads, compiles and starts the chart at path. Resources are
// resolved against its directory.
func (s *Session) LoadFile(path string) error {
	d, err := s.parser.ParseFile(path)
	if nil != err {
		return err
	}
	return s.load(d, 0, filepath.Dir(path))
}

func (s *Session) load(d *game.Decoded, initialTempo float64, dir string) error {
	if nil == d {
		return errors.Wrap(ErrNoChart, "unable to load chart")
	}
	chart, err := timeline.Compile(d, timeline.Options{
		InitialBPM: initialTempo,
		Strict:     s.opts.Strict,
		Logger:     s.log,
	})
	if nil != err {
		return errors.Wrap(err, "unable to compile chart")
	}

	opts := []judge.Option{
		judge.WithOffset(s.offset),
		judge.WithAutoPlay(s.autoPlay),
		judge.WithJudgements(s.opts.Judgements),
		judge.WithHandler(s.opts.Handler),
	}
	s.chart = chart
	s.dir = dir
	s.engine = judge.New(chart, opts...)
	s.rewind()

	s.log.Info("loaded chart",
		"title", chart.Title,
		"artist", chart.Artist,
		"bpm", chart.InitialBPM,
		"notes", chart.NoteCount,
		"long_notes", chart.LongNoteCount,
		"diagnostics", len(chart.Diagnostics),
	)
	return nil
}

func (s *Session) rewind() {
	s.now = 0
	s.clock = 0
	s.clockSet = false
	s.inputs = []game.Input{}
	s.autoUsed = s.autoPlay
}

// SetClock hands over the authoritative time in ms. The next Tick moves
// to it instead of advancing by its delta.
func (s *Session) SetClock(ms float64) {
	s.clock = ms
	s.clockSet = true
}

// Tick advances the play. Without a clock sample since the last Tick the
// session advances itself by delta ms.
func (s *Session) Tick(delta float64) {
	if s.clockSet {
		s.now = s.clock
		s.clockSet = false
	} else {
		s.now += delta
	}
	if nil != s.engine {
		s.engine.Tick(s.now)
	}
}

func (s *Session) OnInputDown(lane int) {
	s.input(lane, false)
}

func (s *Session) OnInputUp(lane int) {
	s.input(lane, true)
}

func (s *Session) input(lane int, released bool) {
	if nil == s.engine || !game.ValidLane(lane) {
		return
	}
	if !s.autoPlay {
		s.inputs = append(s.inputs, game.Input{Lane: lane, Time: s.engine.Now(), Released: released})
	}
	if released {
		s.engine.OnInputUp(lane)
	} else {
		s.engine.OnInputDown(lane)
	}
}

func (s *Session) SetJudgeOffset(ms float64) {
	s.offset = ms
	if nil != s.engine {
		s.engine.SetOffset(ms)
	}
}

func (s *Session) SetAutoPlay(on bool) {
	s.autoPlay = on
	if nil != s.engine {
		s.autoUsed = s.autoUsed || on
		s.engine.SetAutoPlay(on)
	}
}

// Reset restarts the play of the loaded chart from time 0.
func (s *Session) Reset() {
	if nil != s.engine {
		s.engine.Reset()
	}
	s.rewind()
}

// Save stores the inputs of the play so far. Plays that used auto play
// are refused, their auto judgements are not inputs.
func (s *Session) Save() (uuid.UUID, error) {
	if nil == s.chart {
		return uuid.Nil, ErrNoChart
	}
	if nil == s.opts.Scorer {
		return uuid.Nil, ErrNoScorer
	}
	if s.autoUsed {
		return uuid.Nil, ErrAutoPlay
	}
	id, err := s.opts.Scorer.Save(s.chart, s.inputs, s.offset, s.Tally())
	if nil != err {
		return uuid.Nil, err
	}
	s.log.Info("saved play", "id", id, "score", s.Score(), "inputs", len(s.inputs))
	return id, nil
}

// Replay judges a saved play of the loaded chart again on a separate
// engine and returns its final tally. The current play is untouched.
func (s *Session) Replay(id uuid.UUID) (score.Tally, error) {
	if nil == s.chart {
		return score.Tally{}, ErrNoChart
	}
	if nil == s.opts.Scorer {
		return score.Tally{}, ErrNoScorer
	}
	h, err := s.opts.Scorer.Get(id)
	if nil != err {
		return score.Tally{}, err
	}
	e := judge.New(s.chart,
		judge.WithOffset(h.Offset),
		judge.WithJudgements(s.opts.Judgements),
	)
	return Replay(e, h.Inputs), nil
}

// Replay feeds recorded inputs to e and plays it out to the end.
func Replay(e *judge.Engine, inputs []game.Input) score.Tally {
	for _, in := range inputs {
		e.Tick(in.Time)
		if in.Released {
			e.OnInputUp(in.Lane)
		} else {
			e.OnInputDown(in.Lane)
		}
	}
	if c := e.Chart(); nil != c {
		e.Tick(c.Length() + e.Offset() + 2*e.Judgements().Widest() + 1)
	}
	return e.Tally()
}

func (s *Session) Loaded() bool {
	return nil != s.chart
}

func (s *Session) Chart() *game.Chart {
	return s.chart
}

func (s *Session) CurrentTime() float64 {
	return s.now
}

func (s *Session) JudgeOffset() float64 {
	return s.offset
}

func (s *Session) AutoPlay() bool {
	return s.autoPlay
}

func (s *Session) Tally() score.Tally {
	if nil == s.engine {
		return score.Tally{}
	}
	return s.engine.Tally()
}

func (s *Session) Score() int64 {
	return s.Tally().Score
}

func (s *Session) Combo() int64 {
	return s.Tally().Combo
}

func (s *Session) MaxCombo() int64 {
	return s.Tally().MaxCombo
}

// Pending is the number of notes left to judge.
func (s *Session) Pending() int {
	if nil == s.engine {
		return 0
	}
	return s.engine.Pending()
}

func (s *Session) Active(lane int) (judge.LongNote, bool) {
	if nil == s.engine {
		return judge.LongNote{}, false
	}
	return s.engine.Active(lane)
}

// Background is the id of the current background image.
func (s *Session) Background() string {
	if nil == s.engine {
		return ""
	}
	return s.engine.Background()
}

// Layers maps layer channels to their current image id.
func (s *Session) Layers() map[int]string {
	if nil == s.engine {
		return map[int]string{}
	}
	return s.engine.Layers()
}

func (s *Session) Title() string {
	if nil == s.chart {
		return ""
	}
	return s.chart.Title
}

func (s *Session) Artist() string {
	if nil == s.chart {
		return ""
	}
	return s.chart.Artist
}

// Inputs recorded in the current play
func (s *Session) Inputs() []game.Input {
	return append([]game.Input{}, s.inputs...)
}

// WAVs maps keysound ids to files, resolved against the chart directory.
func (s *Session) WAVs() map[string]string {
	paths := map[string]string{}
	if nil == s.chart {
		return paths
	}
	for id, name := range s.chart.WAVs {
		paths[id] = audio.Resolve(s.dir, name)
	}
	return paths
}

// BMPs maps image ids to files, resolved against the chart directory.
func (s *Session) BMPs() map[string]string {
	paths := map[string]string{}
	if nil == s.chart {
		return paths
	}
	for id, name := range s.chart.BMPs {
		paths[id] = filepath.Join(s.dir, name)
	}
	return paths
}

// Placements are the notes for a renderer, see timeline.Placements.
func (s *Session) Placements() []game.Placement {
	if nil == s.chart {
		return []game.Placement{}
	}
	return timeline.Placements(s.chart)
}
