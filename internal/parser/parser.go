package parser

import (
	"io"

	"git.lost.host/meutraa/bms/internal/game"
)

type Parser interface {
	// Parse reads a chart. Only an unreadable source is an error, every
	// other problem is recorded in Decoded.Diagnostics.
	Parse(r io.Reader) (*game.Decoded, error)
	ParseFile(file string) (*game.Decoded, error)
}
