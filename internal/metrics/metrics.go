package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Auth
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by result",
		},
		[]string{"result"}, // success|invalid_credentials|locked
	)
	AuthLockouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_lockouts_total",
			Help: "Accounts locked after repeated failures",
		},
	)

	// Articles
	ArticleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_transitions_total",
			Help: "Applied article lifecycle transitions",
		},
		[]string{"op"}, // create|edit|submit|delete|approve|reject
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(HTTPLatency)
		prometheus.MustRegister(AuthAttempts)
		prometheus.MustRegister(AuthLockouts)
		prometheus.MustRegister(ArticleTransitions)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
