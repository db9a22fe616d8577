// Package metrics exposes Prometheus counters for report fetching and parsing.
//
// A nil *Recorder is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hockey_report"

// Recorder holds the collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	gamesParsed   *prometheus.CounterVec
	goalsFallback prometheus.Counter
	goalsExcluded prometheus.Counter
	fetchFailures *prometheus.CounterVec
	cacheHits     prometheus.Counter
	parseDuration prometheus.Histogram
	httpRequests  *prometheus.CounterVec
}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		gamesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_parsed_total",
			Help:      "Game reports parsed, by resulting status.",
		}, []string{"status"}),
		goalsFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goals_fallback_total",
			Help:      "Goals credited to a side by the fallback policy.",
		}),
		goalsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goals_excluded_total",
			Help:      "Goals left out because their team code was unresolved.",
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Report or feed fetches that failed after retries.",
		}, []string{"source"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_hits_total",
			Help:      "Reports served from the cache instead of fetched.",
		}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing one report.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
	}

	r.registry.MustRegister(
		r.gamesParsed,
		r.goalsFallback,
		r.goalsExcluded,
		r.fetchFailures,
		r.cacheHits,
		r.parseDuration,
		r.httpRequests,
		collectors.NewGoCollector(),
	)
	return r
}

// RecordParse counts one parsed report.
func (r *Recorder) RecordParse(status string, duration time.Duration, fallback, excluded int) {
	if r == nil {
		return
	}
	r.gamesParsed.WithLabelValues(status).Inc()
	r.parseDuration.Observe(duration.Seconds())
	r.goalsFallback.Add(float64(fallback))
	r.goalsExcluded.Add(float64(excluded))
}

// RecordFetchFailure counts a failed fetch. source is "report" or "feed".
func (r *Recorder) RecordFetchFailure(source string) {
	if r == nil {
		return
	}
	r.fetchFailures.WithLabelValues(source).Inc()
}

// RecordCacheHit counts a report served from the cache.
func (r *Recorder) RecordCacheHit() {
	if r == nil {
		return
	}
	r.cacheHits.Inc()
}

// RecordHTTPRequest counts an API request.
func (r *Recorder) RecordHTTPRequest(route, code string) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, code).Inc()
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus text format. A nil Recorder
// serves 404.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
