package game

import (
	"strconv"
)

// Kind is the closed set of things a channel event can be.
type Kind uint8

const (
	TempoChange Kind = iota
	Pause
	MeasureOverride
	PlayableNote
	LongNoteStart
	LongNoteEnd
	BackgroundCue
	LayerCue
)

var kindNames = [...]string{
	TempoChange:     "tempo-change",
	Pause:           "pause",
	MeasureOverride: "measure-override",
	PlayableNote:    "note",
	LongNoteStart:   "long-note-start",
	LongNoteEnd:     "long-note-end",
	BackgroundCue:   "background-cue",
	LayerCue:        "layer-cue",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Directive reports whether events of this kind change the timeline itself
// rather than sitting on it.
func (k Kind) Directive() bool {
	return k == TempoChange || k == Pause || k == MeasureOverride
}

// Event is a single slot of a data line, placed on the timeline.
type Event struct {
	Time     float64 // Absolute time in ms, set by the timeline compiler
	Measure  int     // The measure this event lives in
	Position float64 // Fractional position inside the measure, 0 <= p < 1
	Channel  int     // The raw channel number
	Lane     int     // The lane, 1-9, for playable kinds and long note ends
	Kind     Kind
	ID       string // The raw two character id, "01", "ZZ" etc
	Order    int    // File order, used to break ties

	// End is the paired long note end, only set on a resolved LongNoteStart
	End *Event
}

// Playable notes are the ones a player has to press.
func (e *Event) Playable() bool {
	return e.Kind == PlayableNote || e.Kind == LongNoteStart
}

// Duration of a long note in ms, 0 for everything else
func (e *Event) Duration() float64 {
	if e.End == nil {
		return 0
	}
	return e.End.Time - e.Time
}

// Value parses the id as hex. Ids that are not hex are 0.
func (e *Event) Value() int {
	return HexValue(e.ID)
}

// HexValue parses a hex id, returning 0 for anything malformed.
func HexValue(id string) int {
	v, err := strconv.ParseUint(id, 16, 32)
	if nil != err {
		return 0
	}
	return int(v)
}
