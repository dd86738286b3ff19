package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barterskills_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barterskills_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	dbQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barterskills_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barterskills_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	videoWatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barterskills_video_watches_total",
			Help: "Total number of successful watch requests",
		},
		[]string{"tier"},
	)

	creditsDebitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barterskills_credits_debited_total",
			Help: "Total number of credits debited from viewers",
		},
	)

	videoUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barterskills_video_uploads_total",
			Help: "Total number of published videos",
		},
		[]string{"tier"},
	)

	enrichmentRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barterskills_enrichment_runs_total",
			Help: "Total number of AI enrichment runs",
		},
		[]string{"status"},
	)

	enrichmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barterskills_enrichment_stage_duration_seconds",
			Help:    "AI enrichment stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"stage"},
	)

	premiumActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barterskills_premium_activations_total",
			Help: "Total number of verified premium activations",
		},
		[]string{"plan"},
	)
)

// Middleware returns a gin middleware that records request counts and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordDBQuery records a database query with its duration.
func RecordDBQuery(operation, table string, elapsed time.Duration) {
	dbQueriesTotal.WithLabelValues(operation, table).Inc()
	dbQueryDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}

// RecordWatch records a successful watch request for a video tier.
func RecordWatch(premium bool) {
	videoWatchesTotal.WithLabelValues(tierLabel(premium)).Inc()
}

// RecordCreditDebit records a successful credit debit.
func RecordCreditDebit() {
	creditsDebitedTotal.Inc()
}

// RecordUpload records a published video by tier.
func RecordUpload(premium bool) {
	videoUploadsTotal.WithLabelValues(tierLabel(premium)).Inc()
}

// RecordEnrichmentRun records a completed enrichment run by outcome.
func RecordEnrichmentRun(status string) {
	enrichmentRunsTotal.WithLabelValues(status).Inc()
}

// RecordEnrichmentStage records the duration of one enrichment stage.
func RecordEnrichmentStage(stage string, elapsed time.Duration) {
	enrichmentDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// RecordPremiumActivation records a verified premium purchase.
func RecordPremiumActivation(plan string) {
	premiumActivationsTotal.WithLabelValues(plan).Inc()
}

func tierLabel(premium bool) string {
	if premium {
		return "premium"
	}
	return "free"
}
