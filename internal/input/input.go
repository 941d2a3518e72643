// Package input turns keyboard activity into lane presses and releases.
package input

import (
	"errors"
)

// ErrQuit is returned by a source when the player asked to stop.
var ErrQuit = errors.New("quit requested")

type Event struct {
	Lane     int
	Pressed  bool
	Released bool
}

// Lanes maps a key to its lane, 0 when the key plays nothing.
type Lanes func(r rune) int
