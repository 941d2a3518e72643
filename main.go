package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.lost.host/meutraa/bms/internal/audio"
	"git.lost.host/meutraa/bms/internal/clock"
	"git.lost.host/meutraa/bms/internal/config"
	"git.lost.host/meutraa/bms/internal/input"
	"git.lost.host/meutraa/bms/internal/judge"
	"git.lost.host/meutraa/bms/internal/metrics"
	"git.lost.host/meutraa/bms/internal/render"
	"git.lost.host/meutraa/bms/internal/score"
	"git.lost.host/meutraa/bms/internal/session"
	"git.lost.host/meutraa/bms/internal/theme"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse(args)
	if nil != err {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	columns, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if nil != err {
		return errors.Wrap(err, "unable to get terminal size")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	bank := audio.NewBank(audio.DefaultFormat, log)
	player := audio.NewPlayer(bank, speaker.Lock, speaker.Unlock)

	scorer := &score.DefaultScorer{DSN: score.MemoryDSN, Logger: log}
	if err := scorer.Init(); nil != err {
		return err
	}
	defer scorer.Deinit()

	// The playfield needs the chart, which needs the handler first
	var field *render.Playfield
	handler := judge.Handlers{m, player, judge.Funcs{Result: func(r judge.Result) {
		if nil != field {
			field.OnResult(r)
		}
	}}}

	sess := session.New(session.Options{
		Logger:  log,
		Strict:  cfg.Strict,
		Handler: handler,
		Scorer:  scorer,
	})
	sess.SetJudgeOffset(cfg.OffsetMs())
	sess.SetAutoPlay(cfg.AutoPlay)
	if err := sess.LoadFile(cfg.Chart); nil != err {
		return err
	}
	chart := sess.Chart()
	m.Loaded(chart.NoteCount+chart.LongNoteCount, chart.Diagnostics)
	for _, d := range chart.Diagnostics {
		log.Debug("chart diagnostic", "err", d)
	}

	n := bank.Load(filepath.Dir(cfg.Chart), chart.WAVs)
	log.Info("loaded keysounds", "loaded", n, "declared", len(chart.WAVs))

	field = render.NewPlayfield(&theme.DefaultTheme{}, sess.Placements(), rows, columns, int(cfg.BarRow), cfg.ScrollSpeed)

	sr := audio.DefaultFormat.SampleRate
	if err := speaker.Init(sr, sr.N(time.Second/60)); nil != err {
		return errors.Wrap(err, "unable to open speaker")
	}
	counter := clock.New(player, sr)
	speaker.Play(counter)

	r := &render.DefaultRenderer{}
	if err := r.Init(); nil != err {
		return errors.Wrap(err, "unable to set up terminal")
	}
	err = (&program{
		log:     log,
		cfg:     cfg,
		reg:     reg,
		metrics: m,
		sess:    sess,
		field:   field,
		r:       r,
		counter: counter,
	}).play()
	if derr := r.Deinit(); nil != derr {
		log.Warn("unable to restore terminal", "err", derr)
	}
	if nil != err && !errors.Is(err, input.ErrQuit) {
		return err
	}

	t := sess.Tally()
	m.Observe(t)
	fmt.Printf("%v - %v\n", sess.Title(), sess.Artist())
	fmt.Printf("Score %v, max combo %v, mean %.2fms, stdev %.2fms\n", t.Score, t.MaxCombo, t.Mean(), t.StdDev())

	id, err := sess.Save()
	if errors.Is(err, session.ErrAutoPlay) {
		log.Info("not saving a play that used auto play")
		return nil
	}
	if nil != err {
		return err
	}
	replayed, err := sess.Replay(id)
	if nil != err {
		return err
	}
	if replayed != t {
		log.Warn("replay differs from the play", "id", id, "score", t.Score, "replayed", replayed.Score)
	}
	return nil
}
