package score

import (
	"time"

	"git.lost.host/meutraa/bms/internal/game"
	"github.com/google/uuid"
)

// Scorer keeps the plays of a session so they can be listed and replayed.
type Scorer interface {
	Init() error
	Deinit()

	// Save the inputs and result of this performance
	Save(chart *game.Chart, inputs []game.Input, offset float64, tally Tally) (uuid.UUID, error)

	// Load up previous plays of the chart, oldest first
	Load(chart *game.Chart) ([]History, error)

	// Get a single play
	Get(id uuid.UUID) (*History, error)
}

type History struct {
	ID       uuid.UUID
	Sum      string
	Inputs   []game.Input
	Offset   float64
	Score    int64
	MaxCombo int64
	Played   time.Time
}
