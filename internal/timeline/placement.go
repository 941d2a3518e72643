package timeline

import "git.lost.host/meutraa/bms/internal/game"

// Placements lists what a renderer draws, in time order. Long notes appear
// twice, once for the start carrying the duration and once for the end.
func Placements(chart *game.Chart) []game.Placement {
	placements := make([]game.Placement, 0, chart.NoteCount+2*chart.LongNoteCount)
	for _, e := range chart.Events {
		switch e.Kind {
		case game.PlayableNote:
			placements = append(placements, game.Placement{Lane: e.Lane, Time: e.Time})
		case game.LongNoteStart:
			placements = append(placements, game.Placement{
				Lane:     e.Lane,
				Time:     e.Time,
				Duration: e.Duration(),
				LongNote: true,
			})
		case game.LongNoteEnd:
			placements = append(placements, game.Placement{
				Lane:        e.Lane,
				Time:        e.Time,
				LongNote:    true,
				LongNoteEnd: true,
			})
		}
	}
	return placements
}
