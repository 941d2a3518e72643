package audio

import (
	"git.lost.host/meutraa/bms/internal/game"
	"git.lost.host/meutraa/bms/internal/judge"
	"github.com/faiface/beep"
)

// Player mixes keysounds into one stream. The mixer never ends, it streams
// silence when nothing is playing, so it can drive the clock.
type Player struct {
	Bank  *Bank
	Mixer *beep.Mixer

	// Lock guards the mixer against the speaker goroutine
	Lock, Unlock func()

	// The keysound last hit in each lane, replayed on empty presses
	last [game.Lanes + 1]string
}

// NewPlayer mixes the sounds of bank. lock and unlock guard the mixer
// against whatever pulls the stream, speaker.Lock and speaker.Unlock when
// it plays on the speaker.
func NewPlayer(bank *Bank, lock, unlock func()) *Player {
	return &Player{
		Bank:   bank,
		Mixer:  &beep.Mixer{},
		Lock:   lock,
		Unlock: unlock,
	}
}

// Play starts the sound of id, reporting whether there was one.
func (p *Player) Play(id string) bool {
	s, ok := p.Bank.Streamer(id)
	if !ok {
		return false
	}
	p.Lock()
	p.Mixer.Add(s)
	p.Unlock()
	return true
}

// Playing is the number of sounds still in the mix.
func (p *Player) Playing() int {
	p.Lock()
	defer p.Unlock()
	return p.Mixer.Len()
}

func (p *Player) Stream(samples [][2]float64) (int, bool) {
	return p.Mixer.Stream(samples)
}

func (p *Player) Err() error {
	return nil
}

// OnResult plays the keysound of pressed notes. An empty press repeats the
// last keysound of its lane.
func (p *Player) OnResult(r judge.Result) {
	switch r.Action {
	case judge.Press:
		if nil != r.Note {
			p.last[r.Lane] = r.Note.ID
			p.Play(r.Note.ID)
		}
	case judge.EmptyPress:
		if game.ValidLane(r.Lane) && p.last[r.Lane] != "" {
			p.Play(p.last[r.Lane])
		}
	}
}

// OnCue plays background music, images are not ours.
func (p *Player) OnCue(c judge.Cue) {
	if c.Channel == game.ChannelBGM {
		p.Play(c.ID)
	}
}
