/* metrics.go
 * Contains the Prometheus collectors exported on /metrics. Every method is safe to call on a nil *Metrics so
 * components can run without instrumentation in tests
 */

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the collectors used across the application
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	FeedRequests     *prometheus.CounterVec
	Predictions      *prometheus.CounterVec
	PredictionRaces  prometheus.Counter
	CacheLookups     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enetwork_upstream_requests_total",
			Help: "requests made to the match and news providers",
		}, []string{"source", "outcome"}),
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enetwork_feed_requests_total",
			Help: "personalised feeds served, by whether the broader fallback was used",
		}, []string{"fallback"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enetwork_predictions_total",
			Help: "prediction writes by result",
		}, []string{"result"}),
		PredictionRaces: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enetwork_prediction_races_total",
			Help: "predictions rejected by the store after passing the local check",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enetwork_match_cache_lookups_total",
			Help: "upcoming match cache lookups by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.UpstreamRequests, m.FeedRequests, m.Predictions, m.PredictionRaces, m.CacheLookups)
	return m
}

// Upstream counts a request to an external provider
func (m *Metrics) Upstream(source string, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(source, outcome).Inc()
}

// Feed counts a personalised feed
func (m *Metrics) Feed(usedFallback bool) {
	if m == nil {
		return
	}
	label := "false"
	if usedFallback {
		label = "true"
	}
	m.FeedRequests.WithLabelValues(label).Inc()
}

// Prediction counts a prediction write by result, e.g. committed, already_predicted, persistence_failed
func (m *Metrics) Prediction(result string) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(result).Inc()
}

// Race counts a prediction that lost a race against another write for the same match
func (m *Metrics) Race() {
	if m == nil {
		return
	}
	m.PredictionRaces.Inc()
}

// Cache counts a match cache lookup, result is hit, miss or error
func (m *Metrics) Cache(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
