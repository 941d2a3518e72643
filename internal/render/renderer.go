package render

import (
	"context"
	"image/color"
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(col, row int, content string, frames int)
	RenderLoop(ctx context.Context, period time.Duration, render func(now time.Time) bool) error
	Fill(row, column int, message string)
	FillColor(row, column int, color color.RGBA, message string)
}
