package input

import (
	"context"
	"log/slog"

	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
)

// Translate turns a terminal key into lane events. A terminal has no key
// up, so a press is followed by its release at once.
func Translate(key keyboard.KeyEvent, lanes Lanes) ([]Event, error) {
	if nil != key.Err {
		return nil, key.Err
	}
	switch key.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return nil, ErrQuit
	case keyboard.KeySpace:
		key.Rune = ' '
	}
	lane := lanes(key.Rune)
	if lane == 0 {
		return nil, nil
	}
	return []Event{
		{Lane: lane, Pressed: true},
		{Lane: lane, Released: true},
	}, nil
}

// ReadKeys reads the terminal until ctx is done or escape is pressed.
func ReadKeys(ctx context.Context, log *slog.Logger, lanes Lanes, events chan<- Event) error {
	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return errors.Wrap(err, "unable to open keyboard")
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			log.Warn("unable to close keyboard", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			evs, err := Translate(key, lanes)
			if nil != err {
				return err
			}
			for _, ev := range evs {
				select {
				case events <- ev:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}
