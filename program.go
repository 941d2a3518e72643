package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"git.lost.host/meutraa/bms/internal/clock"
	"git.lost.host/meutraa/bms/internal/config"
	"git.lost.host/meutraa/bms/internal/input"
	"git.lost.host/meutraa/bms/internal/metrics"
	"git.lost.host/meutraa/bms/internal/render"
	"git.lost.host/meutraa/bms/internal/session"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Play on for this long after the last event so trailing misses land
const tail = 2 * time.Second

type program struct {
	log     *slog.Logger
	cfg     *config.Config
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	sess    *session.Session
	field   *render.Playfield
	r       render.Renderer
	counter *clock.Counter
}

// play runs the input readers, the metrics server and the render loop until
// the chart is over or the player quits. Only the render loop touches the
// session.
func (p *program) play() error {
	log, cfg, sess := p.log, p.cfg, p.sess
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	ctx, done := context.WithCancel(ctx)

	events := make(chan input.Event, 128)
	if cfg.Device != "" {
		g.Go(func() error {
			return input.ReadDevice(ctx, log, cfg.Device, cfg.KeyLane, events)
		})
		// The terminal still quits on escape
		g.Go(func() error {
			return input.ReadKeys(ctx, log, func(rune) int { return 0 }, events)
		})
	} else {
		g.Go(func() error {
			return input.ReadKeys(ctx, log, cfg.KeyLane, events)
		})
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})}
		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
		g.Go(func() error {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); nil != err && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "unable to serve metrics")
			}
			return nil
		})
	}

	delay := float64(cfg.Delay.Milliseconds())
	end := sess.Chart().Length() + float64(tail.Milliseconds())
	g.Go(func() error {
		defer done()
		return p.r.RenderLoop(ctx, cfg.FramePeriod, func(time.Time) bool {
			sess.SetClock(p.counter.Millis() - delay)
			sess.Tick(0)
			for drained := false; !drained; {
				select {
				case ev := <-events:
					if ev.Pressed {
						sess.OnInputDown(ev.Lane)
					}
					if ev.Released {
						sess.OnInputUp(ev.Lane)
					}
				default:
					drained = true
				}
			}
			p.metrics.Observe(sess.Tally())
			p.field.Draw(p.r, sess)
			return sess.CurrentTime() < end
		})
	})

	return g.Wait()
}
