// Package metrics exposes scan counters and check latencies in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

const namespace = "seca_scan"

// Recorder owns a private registry so several instances can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	scans         *prometheus.CounterVec
	checkOutcomes *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
}

// NewRecorder registers the scan metrics plus the Go and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		scans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Completed scans by overall outcome",
			},
			[]string{"outcome"},
		),
		checkOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "check_results_total",
				Help:      "Check findings by check name and status",
			},
			[]string{"check", "status"},
		),
		checkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_seconds",
				Help:      "Time spent running a single check",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 45},
			},
			[]string{"check"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Web requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}

// ObserveFinding records one completed check. It matches checker.Observer.
func (r *Recorder) ObserveFinding(f checker.Finding) {
	name := f.Name.Slug()
	r.checkOutcomes.WithLabelValues(name, string(f.Status)).Inc()
	r.checkDuration.WithLabelValues(name).Observe(f.Duration.Seconds())
}

// ObserveReport records a finished scan. Outcome is "error" when any check
// errored, "fail" when any check failed, "pass" otherwise.
func (r *Recorder) ObserveReport(rep *checker.Report) {
	r.scans.WithLabelValues(ScanOutcome(rep)).Inc()
}

// ObserveRequest counts one served web request.
func (r *Recorder) ObserveRequest(route string, code int) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Observer adapts the recorder to the scanner's observer hook.
func (r *Recorder) Observer() checker.Observer {
	return r.ObserveFinding
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ScanOutcome summarizes a report into a single label value.
func ScanOutcome(rep *checker.Report) string {
	switch {
	case rep.HasErrors():
		return string(checker.StatusError)
	case rep.HasFailures():
		return string(checker.StatusFail)
	default:
		return string(checker.StatusPass)
	}
}
