// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "research_discovery"

// Metrics holds the pipeline's prometheus collectors on a private registry.
// All Record methods are safe on a nil *Metrics, so components can run
// without metrics wired.
type Metrics struct {
	registry *prometheus.Registry

	// SearchRequests counts adapter searches by backend and outcome status.
	SearchRequests *prometheus.CounterVec

	// SearchAttempts counts HTTP attempts by backend, retries included.
	SearchAttempts *prometheus.CounterVec

	// PapersFound observes records returned per search.
	PapersFound prometheus.Histogram

	// Degradations counts neutral-default fallbacks by component.
	Degradations *prometheus.CounterVec

	// CompositeScores observes composite scores of ranked ideas.
	CompositeScores prometheus.Histogram

	// IdeasRanked counts ideas that went through scoring.
	IdeasRanked prometheus.Counter

	// Analyses counts finished analyses by terminal status.
	Analyses *prometheus.CounterVec

	// HTTPRequests counts API requests by route pattern and status code.
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SearchRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Literature searches by backend and outcome",
		}, []string{"backend", "status"}),
		SearchAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_attempts_total",
			Help:      "HTTP attempts made against search backends",
		}, []string{"backend"}),
		PapersFound: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_papers_found",
			Help:      "Paper records returned per search",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 50},
		}),
		Degradations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degradations_total",
			Help:      "Neutral-default fallbacks by component",
		}, []string{"component"}),
		CompositeScores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "composite_score",
			Help:      "Composite scores of ranked ideas",
			Buckets:   []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
		}),
		IdeasRanked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ideas_ranked_total",
			Help:      "Ideas scored by the ranking engine",
		}),
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Finished analyses by terminal status",
		}, []string{"status"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordSearch records one adapter search.
func (m *Metrics) RecordSearch(backend, status string, attempts, papers int) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(backend, status).Inc()
	m.SearchAttempts.WithLabelValues(backend).Add(float64(attempts))
	m.PapersFound.Observe(float64(papers))
}

// RecordDegradation records a neutral-default fallback in component.
func (m *Metrics) RecordDegradation(component string) {
	if m == nil {
		return
	}
	m.Degradations.WithLabelValues(component).Inc()
}

// RecordScoredIdea records one idea leaving the scoring step.
func (m *Metrics) RecordScoredIdea(composite float64) {
	if m == nil {
		return
	}
	m.IdeasRanked.Inc()
	m.CompositeScores.Observe(composite)
}

// RecordAnalysis records an analysis reaching a terminal status.
func (m *Metrics) RecordAnalysis(status string) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records one API request.
func (m *Metrics) RecordHTTPRequest(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}

// WriteTextfile writes the current metric values in the text exposition
// format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
