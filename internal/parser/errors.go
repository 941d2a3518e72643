package parser

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind uint8

const (
	FileUnreadable ErrorKind = iota
	MalformedDirective
	MalformedDataLine
	UnmatchedLongNoteEnd
	UnmatchedLongNoteStart
	InvalidNumericField
)

var errorKindNames = [...]string{
	FileUnreadable:         "file unreadable",
	MalformedDirective:     "malformed directive",
	MalformedDataLine:      "malformed data line",
	UnmatchedLongNoteEnd:   "unmatched long note end",
	UnmatchedLongNoteStart: "unmatched long note start",
	InvalidNumericField:    "invalid numeric field",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "unknown"
}

// Error is a problem found while loading a chart. Line is 1 based, 0 when
// the problem is not tied to a line.
type Error struct {
	Kind ErrorKind
	Line int
	Text string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Text != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Text)
	}
	if nil != e.Err {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal errors abort the load, everything else is recovered from.
func (e *Error) Fatal() bool {
	return e.Kind == FileUnreadable
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
