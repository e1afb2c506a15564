package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Branch outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// Registry holds the api-service collectors
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirenest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hirenest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	lifecycleEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirenest",
			Subsystem: "fanout",
			Name:      "events_total",
			Help:      "Events emitted to the fan-out dispatcher.",
		},
		[]string{"type"},
	)

	branchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirenest",
			Subsystem: "fanout",
			Name:      "branch_results_total",
			Help:      "Side-effect branch results after retries.",
		},
		[]string{"branch", "outcome"},
	)

	realtimeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hirenest",
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Open realtime connections.",
		},
	)

	realtimeDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hirenest",
			Subsystem: "realtime",
			Name:      "dropped_messages_total",
			Help:      "Messages dropped because a client send buffer was full.",
		},
	)

	realtimeRelayFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hirenest",
			Subsystem: "realtime",
			Name:      "relay_failures_total",
			Help:      "Broadcasts delivered locally but not relayed to other replicas.",
		},
	)

	mailEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirenest",
			Subsystem: "mail",
			Name:      "enqueued_total",
			Help:      "Mail messages handed to the outbox.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		lifecycleEvents,
		branchOutcomes,
		realtimeConnections,
		realtimeDropped,
		realtimeRelayFailures,
		mailEnqueued,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registered collectors
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency per route template
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordEvent(eventType string) {
	lifecycleEvents.WithLabelValues(eventType).Inc()
}

func RecordBranch(branch string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	branchOutcomes.WithLabelValues(branch, outcome).Inc()
}

func RealtimeConnected()    { realtimeConnections.Inc() }
func RealtimeDisconnected() { realtimeConnections.Dec() }
func RealtimeDropped()      { realtimeDropped.Inc() }
func RealtimeRelayFailed()  { realtimeRelayFailures.Inc() }

func RecordMailEnqueued(err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	mailEnqueued.WithLabelValues(outcome).Inc()
}
