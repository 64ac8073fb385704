package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	SyncRuns        prometheus.Counter
	SyncFailures    prometheus.Counter
	MessagesFetched prometheus.Counter
	MessagesCreated prometheus.Counter
	MessagesSkipped prometheus.Counter
	MessagesFailed  prometheus.Counter
	SyncDuration    prometheus.Histogram
	AIRequests      prometheus.Counter
	AIFailures      prometheus.Counter
	AITokens        prometheus.Counter
	AICost          prometheus.Counter
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		SyncRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_sync_runs_total",
			Help: "Total number of account sync runs",
		}),
		SyncFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_sync_failures_total",
			Help: "Total number of account sync runs that failed outright",
		}),
		MessagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_messages_fetched_total",
			Help: "Total number of message IDs listed from the provider",
		}),
		MessagesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_messages_created_total",
			Help: "Total number of new messages persisted",
		}),
		MessagesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_messages_skipped_total",
			Help: "Total number of messages skipped as already synced",
		}),
		MessagesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_messages_failed_total",
			Help: "Total number of messages that failed to sync",
		}),
		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ideabox_sync_duration_seconds",
			Help:    "Time spent syncing one account",
			Buckets: prometheus.DefBuckets,
		}),
		AIRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_ai_requests_total",
			Help: "Total number of AI analysis requests",
		}),
		AIFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_ai_failures_total",
			Help: "Total number of failed AI analysis requests",
		}),
		AITokens: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_ai_tokens_total",
			Help: "Total number of tokens consumed by AI analysis",
		}),
		AICost: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ideabox_ai_estimated_cost_usd_total",
			Help: "Estimated cumulative AI spend in USD",
		}),
	}
}
