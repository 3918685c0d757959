// SPDX-License-Identifier: MIT

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/pairing/pools"
)

// Metrics holds the Prometheus collectors of the pipeline. A nil *Metrics
// records nothing.
type Metrics struct {
	Runs          *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Matches       *prometheus.CounterVec
	Unmatched     prometheus.Gauge
	BlockingPairs prometheus.Gauge
	Conflicts     prometheus.Counter
}

// NewMetrics creates the collectors under namespace and registers them on
// reg. A nil reg gets a fresh prometheus.Registry.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"algorithm", "status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		Matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matches_total",
				Help:      "Total number of pairs produced, by pool",
			},
			[]string{"pool"},
		),
		Unmatched: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "unmatched",
				Help:      "Persons left unmatched by the last run",
			},
		),
		BlockingPairs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "blocking_pairs",
				Help:      "Blocking pairs of the last run's final matching",
			},
		),
		Conflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pool_conflicts_total",
				Help:      "Pool matches dropped because a person was matched twice",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.Runs, m.StageDuration, m.Matches, m.Unmatched, m.BlockingPairs, m.Conflicts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) observeRun(algorithm Algorithm, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Runs.WithLabelValues(string(algorithm), status).Inc()
}

func (m *Metrics) observeResult(res *Result) {
	if m == nil {
		return
	}
	m.Matches.WithLabelValues(pools.NameHetero).Add(float64(len(res.Hetero)))
	m.Matches.WithLabelValues(pools.NameGay).Add(float64(len(res.Gay)))
	m.Matches.WithLabelValues(pools.NameLesbian).Add(float64(len(res.Lesbian)))
	m.Unmatched.Set(float64(len(res.Unmatched)))
	m.BlockingPairs.Set(float64(res.Stability.BlockingPairs))
	m.Conflicts.Add(float64(res.Conflicts))
}
