package render

import (
	"context"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

type DefaultRenderer struct {
	// Out defaults to stdout, raw mode is only entered for a terminal.
	Out io.Writer

	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
}

type decoration struct {
	X, Y    int
	Content string
	Frames  int // remaining frames until removed
}

func (r *DefaultRenderer) out() io.Writer {
	if nil == r.Out {
		return os.Stdout
	}
	return r.Out
}

func (r *DefaultRenderer) Init() error {
	if f, ok := r.out().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if nil != err {
			return err
		}
		r.restoreState = state
	}

	_, err := io.WriteString(r.out(), "\033[?1049h"+ // Enable alternate buffer
		"\033[?25l"+ // Make the cursor invisible
		"\033[J", // Clear the screen
	)
	return err
}

func (r *DefaultRenderer) Deinit() error {
	if _, err := io.WriteString(r.out(), "\033[?1049l"+ // Disable alternate buffer
		"\033[?25h", // Make the cursor visible
	); nil != err {
		return err
	}
	if nil == r.restoreState {
		return nil
	}
	f := r.out().(*os.File)
	return term.Restore(int(f.Fd()), r.restoreState)
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, " ")
			continue
		}
		r.Fill(d.Y, d.X, d.Content)
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

// RenderLoop draws a frame every period until render returns false or ctx
// is done.
func (r *DefaultRenderer) RenderLoop(ctx context.Context, period time.Duration, render func(now time.Time) bool) error {
	for {
		now := time.Now()
		deadline := now.Add(period)

		cont := render(now)

		r.tickDecorations()
		if err := r.Flush(); nil != err {
			return err
		}
		if !cont {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Until(deadline)):
		}
	}
}

func (r *DefaultRenderer) move(row, column int) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.move(row, column)
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column int, c color.RGBA, message string) {
	r.move(row, column)
	r.buffer.WriteString("\033[38;2;")
	r.buffer.WriteString(strconv.Itoa(int(c.R)))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(int(c.G)))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(int(c.B)))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

// Flush writes out everything filled since the last flush.
func (r *DefaultRenderer) Flush() error {
	_, err := io.WriteString(r.out(), r.buffer.String())
	r.buffer.Reset()
	return err
}
