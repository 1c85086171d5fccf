package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inquizzitive"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	analysisDuration   *prometheus.HistogramVec
	analysisFailures   *prometheus.CounterVec
	cacheRefreshes     *prometheus.CounterVec
	quizzesSubmitted   *prometheus.CounterVec
	questionsGenerated *prometheus.CounterVec
	wsConnections      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent computing analytics by operation.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		analysisFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_failures_total",
			Help:      "Analytics operations that returned an error.",
		}, []string{"operation"}),
		cacheRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_cache_refresh_total",
			Help:      "Background analytics cache refreshes by result.",
		}, []string{"result"}),
		quizzesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_submitted_total",
			Help:      "Completed quiz attempts recorded, by difficulty.",
		}, []string{"difficulty"}),
		questionsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_generation_total",
			Help:      "Question generation requests by result.",
		}, []string{"result"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open dashboard websocket connections.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.analysisDuration,
		m.analysisFailures,
		m.cacheRefreshes,
		m.quizzesSubmitted,
		m.questionsGenerated,
		m.wsConnections,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Recording methods are no-ops on a nil *Metrics.

// ObserveAnalysis records one analytics operation
func (m *Metrics) ObserveAnalysis(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.analysisDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.analysisFailures.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) CacheRefresh(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.cacheRefreshes.WithLabelValues("error").Inc()
		return
	}
	m.cacheRefreshes.WithLabelValues("ok").Inc()
}

func (m *Metrics) QuizSubmitted(difficulty string) {
	if m == nil {
		return
	}
	m.quizzesSubmitted.WithLabelValues(difficulty).Inc()
}

func (m *Metrics) QuestionsGenerated(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.questionsGenerated.WithLabelValues("error").Inc()
		return
	}
	m.questionsGenerated.WithLabelValues("ok").Inc()
}

func (m *Metrics) WebsocketOpened() {
	if m != nil {
		m.wsConnections.Inc()
	}
}

func (m *Metrics) WebsocketClosed() {
	if m != nil {
		m.wsConnections.Dec()
	}
}
