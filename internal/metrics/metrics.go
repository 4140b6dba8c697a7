// Package metrics exposes bridge activity as Prometheus series.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mira"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder owns a private registry so tests and multiple servers in one
// process never collide on the global one.
type Recorder struct {
	registry *prometheus.Registry
	dispatch *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the bridge series plus the Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		dispatch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Inbound bridge calls by entry point, action kind and outcome.",
			},
			[]string{"entry", "kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Wall time of inbound bridge calls, including child process lifetime.",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"entry"},
		),
	}
	r.registry.MustRegister(
		r.dispatch,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveDispatch counts one call and its duration.
func (r *Recorder) ObserveDispatch(entry, kind string, ok bool, d time.Duration) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	r.dispatch.WithLabelValues(entry, kind, outcome).Inc()
	r.duration.WithLabelValues(entry).Observe(d.Seconds())
}

// TrackStreams exports the number of attached UI streams.
func (r *Recorder) TrackStreams(count func() int) {
	r.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_streams",
			Help:      "UI streams currently attached to /window/stream.",
		},
		func() float64 { return float64(count()) },
	))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry, ErrorHandling: promhttp.ContinueOnError})
}
