package theme

import "git.lost.host/meutraa/bms/internal/game"

type Theme interface {
	RenderNote(lane int) string
	RenderLongNote(lane int) string
	RenderHitField(lane int) string
	RenderJudgement(tier game.Tier) string
}
