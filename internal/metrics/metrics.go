package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/fastmks/index"
)

const namespace = "fastmks"

// Collector records max-kernel search work as Prometheus metrics,
// labelled by search mode.
type Collector struct {
	Searches    *prometheus.CounterVec
	Evaluations *prometheus.CounterVec
	Prunes      *prometheus.CounterVec
	BaseCases   *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewCollector creates unregistered search metrics.
func NewCollector() *Collector {
	return &Collector{
		Searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of max-kernel searches",
			},
			[]string{"mode"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "kernel_evaluations_total",
				Help:      "Kernel evaluations between query and reference points",
			},
			[]string{"mode"},
		),
		Prunes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prunes_total",
				Help:      "Nodes or node pairs discarded by bound checks",
			},
			[]string{"mode"},
		),
		BaseCases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "base_cases_total",
				Help:      "Query-reference pairs offered to candidate lists",
			},
			[]string{"mode"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Search duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"mode"},
		),
	}
}

// Register registers every collector with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{c.Searches, c.Evaluations, c.Prunes, c.BaseCases, c.Duration} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// Observe records one completed search.
func (c *Collector) Observe(mode string, stats index.Stats, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Searches.WithLabelValues(mode).Inc()
	c.Evaluations.WithLabelValues(mode).Add(float64(stats.Evaluations))
	c.Prunes.WithLabelValues(mode).Add(float64(stats.Prunes))
	c.BaseCases.WithLabelValues(mode).Add(float64(stats.BaseCases))
	c.Duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}
