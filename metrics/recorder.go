// Package metrics exports round activity as Prometheus metrics
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts round side effects on its own registry
// It satisfies the round side-effect hooks
type Recorder struct {
	registry *prometheus.Registry

	spawned prometheus.Counter
	hits    prometheus.Counter
	misses  prometheus.Counter
	expired prometheus.Counter
	rounds  prometheus.Counter
	scores  prometheus.Histogram
}

// NewRecorder creates a recorder with Go runtime and process collectors attached
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "whack_targets_spawned_total",
			Help: "Total targets placed on the board",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "whack_hits_total",
			Help: "Total targets hit",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "whack_misses_total",
			Help: "Total clicks on empty cells",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "whack_targets_expired_total",
			Help: "Total targets that expired unhit",
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "whack_rounds_completed_total",
			Help: "Total rounds that reached the end phase",
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "whack_round_score",
			Help:    "Final score per completed round",
			Buckets: prometheus.LinearBuckets(0, 50, 10),
		}),
	}

	r.registry.MustRegister(
		r.spawned, r.hits, r.misses, r.expired, r.rounds, r.scores,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Spawned(int) { r.spawned.Inc() }
func (r *Recorder) Hit(int)     { r.hits.Inc() }
func (r *Recorder) Miss()       { r.misses.Inc() }
func (r *Recorder) Expired(int) { r.expired.Inc() }

func (r *Recorder) RoundOver(score int) {
	r.rounds.Inc()
	r.scores.Observe(float64(score))
}
