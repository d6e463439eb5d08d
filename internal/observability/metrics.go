// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scoring metrics
	ScoresComputed  *prometheus.CounterVec
	ScoreValue      prometheus.Histogram
	WalletFallbacks *prometheus.CounterVec

	// Upstream metrics
	UpstreamLatency *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec

	// Identity metrics
	CredentialsIssued  prometheus.Counter
	SubnamesRegistered prometheus.Counter
	GitHubConnections  prometheus.Counter

	// Feed metrics
	FeedSubscribers prometheus.Gauge
	FeedDropped     prometheus.Counter

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulUpdate prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on reg.
// A nil reg registers on the Prometheus default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "omnirep"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ScoresComputed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reputation",
			Name:      "scores_computed_total",
			Help:      "Total number of reputation scores computed by trigger",
		}, []string{"trigger"}),
		ScoreValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reputation",
			Name:      "total_score",
			Help:      "Distribution of computed total scores",
			Buckets:   []float64{50, 100, 200, 300, 400, 500, 600, 700, 800, 900},
		}),
		WalletFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reputation",
			Name:      "wallet_metrics_fallbacks_total",
			Help:      "Total number of scoring runs that used default wallet metrics",
		}, []string{"reason"}),

		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_latency_seconds",
			Help:      "Upstream API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method"}),
		UpstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_errors_total",
			Help:      "Total number of failed upstream API calls",
		}, []string{"service", "method"}),

		CredentialsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "credentials_issued_total",
			Help:      "Total number of verifiable credentials issued",
		}),
		SubnamesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "subnames_registered_total",
			Help:      "Total number of ENS subnames registered",
		}),
		GitHubConnections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "github_connections_total",
			Help:      "Total number of GitHub accounts connected",
		}),

		FeedSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "subscribers",
			Help:      "Current number of websocket feed subscribers",
		}),
		FeedDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "subscribers_dropped_total",
			Help:      "Total number of subscribers dropped for falling behind",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulUpdate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_update_timestamp",
			Help:      "Unix timestamp of last successful reputation update",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordScoreComputed records one scoring run.
func RecordScoreComputed(trigger string, total int) {
	DefaultMetrics.ScoresComputed.WithLabelValues(trigger).Inc()
	DefaultMetrics.ScoreValue.Observe(float64(total))
	DefaultMetrics.LastSuccessfulUpdate.SetToCurrentTime()
}

// RecordWalletFallback records a scoring run that used default wallet metrics.
func RecordWalletFallback(reason string) {
	DefaultMetrics.WalletFallbacks.WithLabelValues(reason).Inc()
}

// RecordUpstreamCall records upstream API call latency and failures.
func RecordUpstreamCall(service, method string, seconds float64, err error) {
	DefaultMetrics.UpstreamLatency.WithLabelValues(service, method).Observe(seconds)
	if err != nil {
		DefaultMetrics.UpstreamErrors.WithLabelValues(service, method).Inc()
	}
}

// RecordCredentialIssued increments the credentials issued counter.
func RecordCredentialIssued() {
	DefaultMetrics.CredentialsIssued.Inc()
}

// RecordSubnameRegistered increments the subnames registered counter.
func RecordSubnameRegistered() {
	DefaultMetrics.SubnamesRegistered.Inc()
}

// RecordGitHubConnected increments the GitHub connections counter.
func RecordGitHubConnected() {
	DefaultMetrics.GitHubConnections.Inc()
}

// UpdateFeedSubscribers sets the feed subscriber gauge.
func UpdateFeedSubscribers(n int) {
	DefaultMetrics.FeedSubscribers.Set(float64(n))
}

// RecordFeedDropped increments the dropped subscriber counter.
func RecordFeedDropped() {
	DefaultMetrics.FeedDropped.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route string, code int, d time.Duration) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	DefaultMetrics.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
