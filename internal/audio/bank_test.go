package audio

import (
	"os"
	"path/filepath"
	"testing"

	"git.lost.host/meutraa/bms/internal/game"
	"git.lost.host/meutraa/bms/internal/judge"
	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, file string, format beep.Format, samples int) {
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, wav.Encode(f, beep.Silence(samples), format))
}

func TestBankLoad(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "kick.wav"), beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}, 2205)
	writeWAV(t, filepath.Join(dir, "snare.wav"), DefaultFormat, 441)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.wav"), []byte("not audio"), 0644))

	b := NewBank(DefaultFormat, nil)
	n := b.Load(dir, map[string]string{
		"01": "kick.wav",
		"02": "snare.ogg",
		"03": "missing.wav",
		"04": "broken.wav",
	})
	assert.Equal(t, 2, n)

	s, ok := b.Streamer("01")
	require.True(t, ok)
	buf := make([][2]float64, 8192)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	// Resampled from 22050 to 44100
	assert.InDelta(t, 4410, total, 50)

	_, ok = b.Streamer("03")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hat.mp3"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ride.wav"), nil, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "tom.ogg"), nil, 0644))

	assert.Equal(t, filepath.Join(dir, "hat.mp3"), Resolve(dir, "hat.wav"))
	assert.Equal(t, filepath.Join(dir, "ride.wav"), Resolve(dir, "ride.wav"))
	assert.Equal(t, filepath.Join(dir, "sub", "tom.ogg"), Resolve(dir, "sub\\tom.wav"))
	assert.Equal(t, filepath.Join(dir, "gone.wav"), Resolve(dir, "gone.wav"))
}

func TestPlayer(t *testing.T) {
	b := NewBank(DefaultFormat, nil)
	buffer := beep.NewBuffer(DefaultFormat)
	buffer.Append(beep.Silence(1000))
	b.Add("01", buffer)

	p := NewPlayer(b, func() {}, func() {})
	assert.True(t, p.Play("01"))
	assert.True(t, p.Play("01"))
	assert.False(t, p.Play("ZZ"))
	assert.Equal(t, 2, p.Playing())

	buf := make([][2]float64, 512)
	for i := 0; i < 4; i++ {
		n, ok := p.Stream(buf)
		assert.Equal(t, 512, n)
		assert.True(t, ok, "the mix never ends")
	}
	assert.Equal(t, 0, p.Playing())
	assert.NoError(t, p.Err())
}

func TestPlayerHandler(t *testing.T) {
	b := NewBank(DefaultFormat, nil)
	for _, id := range []string{"01", "02"} {
		buffer := beep.NewBuffer(DefaultFormat)
		buffer.Append(beep.Silence(100000))
		b.Add(id, buffer)
	}
	p := NewPlayer(b, func() {}, func() {})

	p.OnResult(judge.Result{Action: judge.EmptyPress, Lane: 1})
	assert.Equal(t, 0, p.Playing(), "nothing hit in lane 1 yet")

	p.OnResult(judge.Result{Action: judge.Press, Lane: 1, Note: &game.Event{ID: "01"}})
	p.OnResult(judge.Result{Action: judge.EmptyPress, Lane: 1})
	p.OnResult(judge.Result{Action: judge.Miss, Lane: 1, Note: &game.Event{ID: "02"}})
	assert.Equal(t, 2, p.Playing())

	p.OnCue(judge.Cue{Channel: game.ChannelBGM, ID: "02"})
	p.OnCue(judge.Cue{Channel: game.ChannelBGA, ID: "01"})
	assert.Equal(t, 3, p.Playing())
}

func TestPlayerLocks(t *testing.T) {
	b := NewBank(DefaultFormat, nil)
	buffer := beep.NewBuffer(DefaultFormat)
	buffer.Append(beep.Silence(10))
	b.Add("01", buffer)

	held := 0
	p := NewPlayer(b, func() { held++ }, func() { held-- })
	locks := 0
	p.Lock = func() { held++; locks++ }

	assert.True(t, p.Play("01"))
	assert.False(t, p.Play("02"), "unknown ids never touch the mixer")
	assert.Equal(t, 1, p.Playing())
	assert.Equal(t, 2, locks)
	assert.Equal(t, 0, held, "every lock is released")
}
