// Package metrics exports judgement and chart loading counters to
// prometheus.
package metrics

import (
	"fmt"

	"git.lost.host/meutraa/bms/internal/judge"
	"git.lost.host/meutraa/bms/internal/parser"
	"git.lost.host/meutraa/bms/internal/score"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/pkg/errors"
)

const namespace = "bms"

// Metrics observes an engine as a judge.Handler and a session through
// Observe and Loaded.
type Metrics struct {
	judgements  *prometheus.CounterVec
	deltas      prometheus.Histogram
	cues        *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	charts      prometheus.Counter
	notes       prometheus.Gauge
	score       prometheus.Gauge
	combo       prometheus.Gauge
	maxCombo    prometheus.Gauge
}

// New registers the collectors with reg, the default registerer when nil.
func New(reg prometheus.Registerer) *Metrics {
	if nil == reg {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		judgements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "judge",
			Name:      "results_total",
			Help:      "Judgements by action and tier",
		}, []string{"action", "tier"}),
		deltas: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "judge",
			Name:      "press_delta_ms",
			Help:      "Offset corrected press deltas in ms, negative is early",
			Buckets:   []float64{-250, -166.7, -83.3, -33.3, -16.7, 0, 16.7, 33.3, 83.3, 166.7, 250},
		}),
		cues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "judge",
			Name:      "cues_total",
			Help:      "Dispatched background, layer and keysound cues by channel",
		}, []string{"channel"}),
		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "diagnostics_total",
			Help:      "Recoverable problems met while loading charts",
		}, []string{"kind"}),
		charts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "loaded_total",
			Help:      "Charts loaded",
		}),
		notes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "notes",
			Help:      "Playable notes in the loaded chart",
		}),
		score: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "play",
			Name:      "score",
			Help:      "Current score",
		}),
		combo: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "play",
			Name:      "combo",
			Help:      "Current combo",
		}),
		maxCombo: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "play",
			Name:      "max_combo",
			Help:      "Longest combo of the current play",
		}),
	}
}

func (m *Metrics) OnResult(r judge.Result) {
	m.judgements.WithLabelValues(r.Action.String(), r.Tier.String()).Inc()
	if r.Action == judge.Press {
		m.deltas.Observe(r.Delta)
	}
}

func (m *Metrics) OnCue(c judge.Cue) {
	m.cues.WithLabelValues(fmt.Sprintf("%02X", c.Channel)).Inc()
}

// Observe publishes the running tally.
func (m *Metrics) Observe(t score.Tally) {
	m.score.Set(float64(t.Score))
	m.combo.Set(float64(t.Combo))
	m.maxCombo.Set(float64(t.MaxCombo))
}

// Loaded counts a chart and its diagnostics.
func (m *Metrics) Loaded(notes int64, diagnostics []error) {
	m.charts.Inc()
	m.notes.Set(float64(notes))
	for _, diag := range diagnostics {
		kind := "unknown"
		var pe *parser.Error
		if errors.As(diag, &pe) {
			kind = pe.Kind.String()
		}
		m.diagnostics.WithLabelValues(kind).Inc()
	}
}
