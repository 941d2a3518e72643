package session

import (
	"os"
	"path/filepath"
	"testing"

	"git.lost.host/meutraa/bms/internal/game"
	"git.lost.host/meutraa/bms/internal/judge"
	"git.lost.host/meutraa/bms/internal/parser"
	"git.lost.host/meutraa/bms/internal/score"
	"git.lost.host/meutraa/bms/internal/testdata"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, chart string) *game.Decoded {
	p := parser.DefaultParser{}
	d, err := p.Parse(testdata.Reader(chart))
	require.NoError(t, err)
	return d
}

func loaded(t *testing.T, chart string, opts Options) *Session {
	s := New(opts)
	require.NoError(t, s.LoadChart(decode(t, chart), 0))
	return s
}

func TestSinglePerfect(t *testing.T) {
	s := loaded(t, testdata.Single, Options{})
	s.SetClock(1000)
	s.Tick(16)
	assert.Equal(t, 1000.0, s.CurrentTime())
	s.OnInputDown(1)

	assert.Equal(t, int64(1000), s.Score())
	assert.Equal(t, int64(1), s.Combo())
	assert.Equal(t, int64(1), s.MaxCombo())
	assert.Equal(t, int64(1), s.Tally().Counts[game.Perfect])
}

func TestSelfAdvance(t *testing.T) {
	s := loaded(t, testdata.Single, Options{})
	s.Tick(500)
	s.Tick(500)
	assert.Equal(t, 1000.0, s.CurrentTime())

	// A clock sample is used once
	s.SetClock(400)
	s.Tick(16)
	assert.Equal(t, 400.0, s.CurrentTime())
	s.Tick(16)
	assert.Equal(t, 416.0, s.CurrentTime())
}

func TestScrollOutMiss(t *testing.T) {
	s := loaded(t, testdata.Single, Options{})
	s.SetClock(1250)
	s.Tick(0)
	assert.Equal(t, 1, s.Pending())
	s.Tick(0.5)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, int64(1), s.Tally().Counts[game.Miss])
	assert.Equal(t, int64(0), s.Combo())
}

func TestLongNoteForcedFail(t *testing.T) {
	s := loaded(t, testdata.LongNote, Options{})
	s.SetClock(1000)
	s.Tick(0)
	s.OnInputDown(2)
	_, ok := s.Active(2)
	require.True(t, ok)

	s.SetClock(2251)
	s.Tick(0)
	_, ok = s.Active(2)
	assert.False(t, ok)
	assert.Equal(t, int64(0), s.Combo())
	assert.Equal(t, int64(1), s.Tally().Breaks)
}

func TestInitialTempo(t *testing.T) {
	s := New(Options{})
	require.NoError(t, s.LoadChart(decode(t, testdata.Single), 60))
	assert.Equal(t, []game.Placement{{Lane: 1, Time: 2000}}, s.Placements())
}

func TestLoadFailureKeepsState(t *testing.T) {
	s := loaded(t, testdata.Single, Options{Strict: true})
	s.SetClock(1000)
	s.Tick(0)
	s.OnInputDown(1)

	err := s.LoadChart(nil, 0)
	assert.ErrorIs(t, err, ErrNoChart)

	err = s.LoadChart(decode(t, testdata.Full), 0)
	require.Error(t, err)
	assert.True(t, parser.IsKind(err, parser.UnmatchedLongNoteEnd))

	err = s.LoadFile(filepath.Join(t.TempDir(), "missing.bms"))
	require.Error(t, err)
	assert.True(t, parser.IsKind(err, parser.FileUnreadable))

	assert.Equal(t, "Single", s.Title())
	assert.Equal(t, int64(1000), s.Score())
	assert.Equal(t, 1000.0, s.CurrentTime())
	assert.Len(t, s.Inputs(), 1)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "full.bms")
	require.NoError(t, os.WriteFile(file, []byte(testdata.Full), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snare.wav"), nil, 0644))

	s := New(Options{})
	require.NoError(t, s.LoadFile(file))
	assert.Equal(t, "Full Chart", s.Title())
	assert.Equal(t, "Tester", s.Artist())
	assert.Equal(t, map[string]string{
		"01": filepath.Join(dir, "kick.wav"),
		"02": filepath.Join(dir, "snare.wav"),
	}, s.WAVs())
	assert.Equal(t, map[string]string{
		"01": filepath.Join(dir, "back.bmp"),
		"02": filepath.Join(dir, "layer.bmp"),
	}, s.BMPs())
	assert.Len(t, s.Chart().Diagnostics, 4)
}

func TestNothingLoaded(t *testing.T) {
	s := New(Options{})
	s.Tick(100)
	s.OnInputDown(1)
	s.OnInputUp(1)
	s.SetJudgeOffset(5)
	s.SetAutoPlay(true)
	s.Reset()

	assert.False(t, s.Loaded())
	assert.Equal(t, int64(0), s.Score())
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, "", s.Title())
	assert.Equal(t, "", s.Background())
	assert.Empty(t, s.Layers())
	assert.Empty(t, s.WAVs())
	assert.Empty(t, s.BMPs())
	assert.Empty(t, s.Placements())

	_, err := s.Save()
	assert.ErrorIs(t, err, ErrNoChart)
}

func TestJudgeOffset(t *testing.T) {
	s := New(Options{})
	s.SetJudgeOffset(25)
	require.NoError(t, s.LoadChart(decode(t, testdata.Single), 0))
	assert.Equal(t, 25.0, s.JudgeOffset())

	s.SetClock(1025)
	s.Tick(0)
	s.OnInputDown(1)
	assert.Equal(t, int64(1), s.Tally().Counts[game.Perfect])

	s.Reset()
	s.SetJudgeOffset(-25)
	s.SetClock(975)
	s.Tick(0)
	s.OnInputDown(1)
	assert.Equal(t, int64(1), s.Tally().Counts[game.Perfect])
}

func TestAutoPlay(t *testing.T) {
	s := New(Options{})
	s.SetAutoPlay(true)
	require.NoError(t, s.LoadChart(decode(t, testdata.Full), 0))
	assert.True(t, s.AutoPlay())
	for i := 0; i < 500; i++ {
		s.Tick(16)
		s.OnInputDown(1)
	}
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, int64(9), s.MaxCombo())
	assert.Equal(t, int64(9000), s.Score())
	assert.Empty(t, s.Inputs())
}

func TestCues(t *testing.T) {
	s := loaded(t, testdata.Full, Options{})
	s.Tick(0)
	assert.Equal(t, "01", s.Background())
	s.SetClock(4500)
	s.Tick(0)
	assert.Equal(t, map[int]string{game.ChannelBGALayer: "02"}, s.Layers())
}

func TestReset(t *testing.T) {
	s := loaded(t, testdata.Single, Options{})
	s.SetClock(1000)
	s.Tick(0)
	s.OnInputDown(1)
	s.OnInputUp(1)
	require.Len(t, s.Inputs(), 2)

	s.Reset()
	assert.Equal(t, 0.0, s.CurrentTime())
	assert.Equal(t, int64(0), s.Score())
	assert.Equal(t, 1, s.Pending())
	assert.Empty(t, s.Inputs())
	assert.True(t, s.Loaded())
}

func TestIgnoresInvalidLanes(t *testing.T) {
	s := loaded(t, testdata.Single, Options{})
	s.OnInputDown(0)
	s.OnInputDown(10)
	s.OnInputUp(-3)
	assert.Empty(t, s.Inputs())
	assert.Equal(t, int64(0), s.Tally().EmptyPresses)
}

type results []judge.Result

func (r *results) OnResult(res judge.Result) { *r = append(*r, res) }
func (r *results) OnCue(judge.Cue)           {}

func TestHandler(t *testing.T) {
	rs := &results{}
	s := loaded(t, testdata.Single, Options{Handler: rs})
	s.SetClock(1010)
	s.Tick(0)
	s.OnInputDown(1)
	require.Len(t, *rs, 1)
	assert.Equal(t, game.Perfect, (*rs)[0].Tier)
}

func TestSaveReplay(t *testing.T) {
	scorer := &score.DefaultScorer{}
	require.NoError(t, scorer.Init())
	defer scorer.Deinit()

	s := loaded(t, testdata.Full, Options{Scorer: scorer})
	s.SetJudgeOffset(5)
	presses := []struct {
		at   float64
		lane int
	}{
		{1010, 1}, {2000, 1}, {2030, 2}, {2560, 1}, {3250, 1},
		{4300, 2}, {4500, 3}, {5500, 5},
	}
	for _, p := range presses {
		s.SetClock(p.at)
		s.Tick(0)
		s.OnInputDown(p.lane)
		s.OnInputUp(p.lane)
	}
	s.SetClock(10000)
	s.Tick(0)
	live := s.Tally()
	require.Equal(t, int64(1), live.Breaks, "lane 5 was let go at once")

	id, err := s.Save()
	require.NoError(t, err)

	replayed, err := s.Replay(id)
	require.NoError(t, err)
	assert.Equal(t, live, replayed)

	// The live play is untouched
	assert.Equal(t, live, s.Tally())

	_, err = s.Replay(uuid.New())
	assert.Error(t, err)
}

func TestSaveWithoutScorer(t *testing.T) {
	s := loaded(t, testdata.Single, Options{})
	_, err := s.Save()
	assert.True(t, errors.Is(err, ErrNoScorer))
	_, err = s.Replay(uuid.New())
	assert.ErrorIs(t, err, ErrNoScorer)
}

func TestSaveRefusesAutoPlay(t *testing.T) {
	scorer := &score.DefaultScorer{}
	require.NoError(t, scorer.Init())
	defer scorer.Deinit()

	s := loaded(t, testdata.Full, Options{Scorer: scorer})
	s.SetClock(1000)
	s.Tick(0)
	s.OnInputDown(1)
	s.SetAutoPlay(true)
	s.SetClock(3000)
	s.Tick(0)
	s.SetAutoPlay(false)

	_, err := s.Save()
	assert.ErrorIs(t, err, ErrAutoPlay)

	// A fresh play without auto play saves again
	s.Reset()
	s.SetClock(1000)
	s.Tick(0)
	s.OnInputDown(1)
	_, err = s.Save()
	assert.NoError(t, err)

	s.SetAutoPlay(true)
	s.Reset()
	_, err = s.Save()
	assert.ErrorIs(t, err, ErrAutoPlay)
}
