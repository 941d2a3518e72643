// Package timeline turns a decoded chart into absolute millisecond times.
package timeline

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"git.lost.host/meutraa/bms/internal/game"
	"git.lost.host/meutraa/bms/internal/parser"
)

type Options struct {
	// InitialBPM overrides the chart's #BPM when positive
	InitialBPM float64

	// Strict rejects charts with unmatched long note starts or ends
	// instead of dropping those notes.
	Strict bool

	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if nil == o.Logger {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Compile places every event of d on an absolute timeline. d is not
// modified, the returned chart owns copies of the events.
func Compile(d *game.Decoded, opts Options) (*game.Chart, error) {
	log := opts.logger()
	bpm := initialBPM(d, opts)

	events := make([]*game.Event, len(d.Events))
	for i, e := range d.Events {
		ev := *e
		ev.End = nil
		events[i] = &ev
	}
	sortPlacement(events)

	diagnostics := append([]error{}, d.Diagnostics...)

	c := newCursor(d, bpm)
	c.invalid = func(e *game.Event, reason string) {
		err := &parser.Error{Kind: parser.InvalidNumericField, Text: describe(e), Err: fmt.Errorf("%s %s", reason, e.ID)}
		diagnostics = append(diagnostics, err)
		log.Warn("ignoring directive", "measure", e.Measure, "kind", e.Kind.String(), "id", e.ID, "reason", reason)
	}
	for _, e := range events {
		c.seek(e.Measure)
		e.Time = c.at(e.Position)
		c.apply(e)
	}

	dropped, unmatched := pairLongNotes(events)
	for _, e := range unmatched {
		kind := parser.UnmatchedLongNoteEnd
		if e.Kind == game.LongNoteStart {
			kind = parser.UnmatchedLongNoteStart
		}
		err := &parser.Error{Kind: kind, Text: describe(e)}
		if opts.Strict {
			return nil, err
		}
		diagnostics = append(diagnostics, err)
		log.Warn("dropping long note", "lane", e.Lane, "measure", e.Measure, "kind", kind.String())
	}

	// Ends are placed by walking the directives again up to their own
	// position, the same walk every other event went through.
	for _, e := range events {
		if e.Kind == game.LongNoteStart && nil != e.End {
			e.End.Time = timeAt(d, events, bpm, e.End.Measure, e.End.Position, e.End.Order)
		}
	}

	chart := &game.Chart{
		Header:      d.Header,
		InitialBPM:  bpm,
		WAVs:        d.WAVs,
		BMPs:        d.BMPs,
		Events:      make([]*game.Event, 0, len(events)),
		Diagnostics: diagnostics,
	}
	for _, e := range events {
		if dropped[e] {
			continue
		}
		switch e.Kind {
		case game.PlayableNote:
			chart.NoteCount++
		case game.LongNoteStart:
			chart.LongNoteCount++
		}
		chart.Events = append(chart.Events, e)
	}
	sort.SliceStable(chart.Events, func(i, j int) bool {
		return chart.Events[i].Time < chart.Events[j].Time
	})

	log.Debug("compiled chart",
		"title", chart.Title,
		"events", len(chart.Events),
		"notes", chart.NoteCount,
		"long_notes", chart.LongNoteCount,
		"length_ms", chart.Length(),
	)
	return chart, nil
}

// TimeAt is the absolute time of a position in the chart. Directives at the
// same position are treated as already applied.
func TimeAt(d *game.Decoded, measure int, pos float64) float64 {
	events := make([]*game.Event, 0, len(d.Events))
	for _, e := range d.Events {
		if e.Kind.Directive() {
			events = append(events, e)
		}
	}
	sortPlacement(events)
	return timeAt(d, events, initialBPM(d, Options{}), measure, pos, math.MaxInt)
}

// timeAt replays the directives of sorted that come before (measure, pos,
// order) and places the target.
func timeAt(d *game.Decoded, sorted []*game.Event, bpm float64, measure int, pos float64, order int) float64 {
	c := newCursor(d, bpm)
	for _, e := range sorted {
		if !before(e, measure, pos, order) {
			break
		}
		if !e.Kind.Directive() {
			continue
		}
		c.seek(e.Measure)
		c.apply(e)
	}
	c.seek(measure)
	return c.at(pos)
}

func before(e *game.Event, measure int, pos float64, order int) bool {
	if e.Measure != measure {
		return e.Measure < measure
	}
	if e.Position != pos {
		return e.Position < pos
	}
	return e.Order < order
}

func sortPlacement(events []*game.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		return before(a, b.Measure, b.Position, b.Order)
	})
}

// pairLongNotes links each end to the nearest earlier unmatched start of
// its lane. Events are in placement order. Unmatched starts and ends are
// returned in placement order and marked dropped.
func pairLongNotes(events []*game.Event) (map[*game.Event]bool, []*game.Event) {
	open := map[int][]*game.Event{}
	dropped := map[*game.Event]bool{}
	unmatched := []*game.Event{}

	for _, e := range events {
		switch e.Kind {
		case game.LongNoteStart:
			open[e.Lane] = append(open[e.Lane], e)
		case game.LongNoteEnd:
			starts := open[e.Lane]
			if len(starts) == 0 {
				dropped[e] = true
				unmatched = append(unmatched, e)
				continue
			}
			start := starts[len(starts)-1]
			open[e.Lane] = starts[:len(starts)-1]
			start.End = e
		}
	}

	for _, e := range events {
		if e.Kind == game.LongNoteStart && nil == e.End {
			dropped[e] = true
			unmatched = append(unmatched, e)
		}
	}
	sortPlacement(unmatched)
	return dropped, unmatched
}

func initialBPM(d *game.Decoded, opts Options) float64 {
	if opts.InitialBPM > 0 {
		return opts.InitialBPM
	}
	if d.InitialBPM > 0 {
		return d.InitialBPM
	}
	return game.DefaultBPM
}

func describe(e *game.Event) string {
	return fmt.Sprintf("measure %03d channel %02X lane %d position %g", e.Measure, e.Channel, e.Lane, e.Position)
}
