package theme

import (
	"fmt"
	"image/color"

	"git.lost.host/meutraa/bms/internal/game"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(lane int) string {
	return paint(laneColor(lane), noteSym)
}

func (t *DefaultTheme) RenderLongNote(lane int) string {
	return paint(laneColor(lane), bodySym)
}

func (t *DefaultTheme) RenderHitField(lane int) string {
	return barSym
}

func (t *DefaultTheme) RenderJudgement(tier game.Tier) string {
	name, ok := judgementNames[tier]
	if !ok {
		return tier.String()
	}
	return name
}

const (
	noteSym = "⬤"
	bodySym = "┃"
	barSym  = "-"
)

var (
	white   = color.RGBA{236, 236, 236, 255}
	blue    = color.RGBA{0, 118, 236, 255}
	red     = color.RGBA{236, 30, 0, 255}
	grey    = color.RGBA{106, 106, 106, 255}
	unknown = color.RGBA{255, 255, 255, 255}

	// Lanes 1-5, 8 and 9 are the keys, 6 the scratch and 7 the pedal
	laneColors = map[int]color.RGBA{
		1: white, 2: blue, 3: white, 4: blue, 5: white, 8: blue, 9: white,
		6: red,
		7: grey,
	}

	judgementNames = map[game.Tier]string{
		game.Perfect: "\033[1;31mP\033[38;5;208mE\033[1;33mR\033[1;32mF\033[38;5;153mE\033[1;35mC\033[1;36mT\033[0m",
		game.Great:   "  \033[1;33mGREAT\033[0m",
		game.Good:    "   \033[1;32mGOOD\033[0m",
		game.Bad:     "    \033[1;36mBAD\033[0m",
		game.Poor:    "   \033[1;35mPOOR\033[0m",
		game.Miss:    "   \033[1;31mMISS\033[0m",
	}
)

func laneColor(lane int) color.RGBA {
	c, ok := laneColors[lane]
	if !ok {
		return unknown
	}
	return c
}

func paint(c color.RGBA, sym string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, sym)
}
