package input

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// https://github.com/torvalds/linux/blob/master/include/uapi/linux/input-event-codes.h
const (
	evKey   = 0x01
	keyEsc  = 1
	release = 0
	press   = 1
)

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

var codes = map[rune]uint16{
	'1': 2, '2': 3, '3': 4, '4': 5, '5': 6, '6': 7, '7': 8, '8': 9, '9': 10, '0': 11,
	'q': 16, 'w': 17, 'e': 18, 'r': 19, 't': 20, 'y': 21, 'u': 22, 'i': 23, 'o': 24, 'p': 25,
	'a': 30, 's': 31, 'd': 32, 'f': 33, 'g': 34, 'h': 35, 'j': 36, 'k': 37, 'l': 38, ';': 39,
	'z': 44, 'x': 45, 'c': 46, 'v': 47, 'b': 48, 'n': 49, 'm': 50, ',': 51, '.': 52, '/': 53,
	' ': 57,
}

// CodeLanes builds the key code to lane table of a device.
func CodeLanes(lanes Lanes) map[uint16]int {
	m := map[uint16]int{}
	for r, code := range codes {
		if lane := lanes(r); lane > 0 {
			m[code] = lane
		}
	}
	return m
}

// Decode reads input events from r until it fails. Key repeats and keys
// without a lane are dropped. Escape ends it with ErrQuit.
func Decode(ctx context.Context, r io.Reader, lanes map[uint16]int, events chan<- Event) error {
	var ev keyEvent
	for {
		if err := binary.Read(r, binary.LittleEndian, &ev); nil != err {
			return errors.Wrap(err, "unable to read keyboard input")
		}
		if ev.Type != evKey {
			continue
		}
		if ev.Code == keyEsc && ev.Value == press {
			return ErrQuit
		}
		lane, ok := lanes[ev.Code]
		if !ok || (ev.Value != press && ev.Value != release) {
			continue
		}
		select {
		case events <- Event{Lane: lane, Pressed: ev.Value == press, Released: ev.Value == release}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReadDevice decodes an evdev keyboard, like /dev/input/event3, until ctx
// is done. Unlike a terminal it reports releases.
func ReadDevice(ctx context.Context, log *slog.Logger, device string, lanes Lanes, events chan<- Event) error {
	file, err := os.Open(device)
	if nil != err {
		return errors.Wrap(err, "unable to open input device")
	}
	go func() {
		<-ctx.Done()
		file.Close()
	}()
	log.Info("reading input device", "device", device)

	err = Decode(ctx, file, CodeLanes(lanes), events)
	if nil != ctx.Err() {
		return nil
	}
	return err
}
