// Package metrics holds the prometheus collectors for generation, quiz,
// storage and HTTP activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pathfinder"

// Metrics is a set of collectors registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	moduleDetails   *prometheus.CounterVec
	quizGenerations *prometheus.CounterVec
	quizSubmissions *prometheus.CounterVec
	storeOps        *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moduleDetails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_detail_generations_total",
			Help:      "Per-module detailed content generations by outcome.",
		}, []string{"outcome"}),
		quizGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_generations_total",
			Help:      "Module quiz generations by outcome.",
		}, []string{"outcome"}),
		quizSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_submissions_total",
			Help:      "Scored quiz attempts by result.",
		}, []string{"result"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_store_operations_total",
			Help:      "Path record store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Model request latency by purpose and outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 90},
		}, []string{"purpose", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "endpoint", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 15, 60},
		}, []string{"method", "endpoint"}),
	}

	m.registry.MustRegister(
		m.moduleDetails,
		m.quizGenerations,
		m.quizSubmissions,
		m.storeOps,
		m.llmLatency,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry exposes the underlying registry (tests, custom exporters).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ModuleDetail records one per-module generation result.
func (m *Metrics) ModuleDetail(err error) {
	if m == nil {
		return
	}
	m.moduleDetails.WithLabelValues(outcome(err)).Inc()
}

// QuizGenerated records one quiz generation result.
func (m *Metrics) QuizGenerated(err error) {
	if m == nil {
		return
	}
	m.quizGenerations.WithLabelValues(outcome(err)).Inc()
}

// QuizSubmitted records a scored attempt.
func (m *Metrics) QuizSubmitted(passed bool) {
	if m == nil {
		return
	}
	result := "failed"
	if passed {
		result = "passed"
	}
	m.quizSubmissions.WithLabelValues(result).Inc()
}

// StoreOp records a path record store operation.
func (m *Metrics) StoreOp(op string, err error) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(op, outcome(err)).Inc()
}

// LLMRequest records model request latency.
func (m *Metrics) LLMRequest(purpose string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(purpose, outcome(err)).Observe(d.Seconds())
}

// Middleware counts and times every request by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
