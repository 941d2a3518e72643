package game

// Chart is a compiled chart. Events are sorted by Time, with ties kept in
// file order, and are not modified after compilation.
type Chart struct {
	Header
	InitialBPM float64
	WAVs       map[string]string
	BMPs       map[string]string

	Events        []*Event
	NoteCount     int64
	LongNoteCount int64

	// Recoverable problems from loading and compiling
	Diagnostics []error
}

// Playable returns the notes a player has to hit, in time order.
func (c *Chart) Playable() []*Event {
	notes := make([]*Event, 0, c.NoteCount+c.LongNoteCount)
	for _, e := range c.Events {
		if e.Playable() {
			notes = append(notes, e)
		}
	}
	return notes
}

// Cues returns the background and layer events, in time order.
func (c *Chart) Cues() []*Event {
	cues := []*Event{}
	for _, e := range c.Events {
		if e.Kind == BackgroundCue || e.Kind == LayerCue {
			cues = append(cues, e)
		}
	}
	return cues
}

// Length is the time of the last event
func (c *Chart) Length() float64 {
	if len(c.Events) == 0 {
		return 0
	}
	return c.Events[len(c.Events)-1].Time
}

// Placement is what a renderer needs to draw a note.
type Placement struct {
	Lane        int
	Time        float64
	Duration    float64 // 0 if not a long note
	LongNote    bool
	LongNoteEnd bool
}
