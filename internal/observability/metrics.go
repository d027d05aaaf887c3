package observability

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/voyagerverse-backend/internal/platform/envutil"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	reevaluations *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	confidence    prometheus.Histogram
	fallbacks     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	weather       *prometheus.CounterVec
	sessions      prometheus.Gauge
	sseClients    prometheus.Gauge

	// SLO inputs and outputs.
	latencyGoal       time.Duration
	apiTotal          prometheus.Counter
	apiErrors         prometheus.Counter
	apiFast           prometheus.Counter
	proposalsResolved prometheus.Counter
	proposalsApproved prometheus.Counter
	sloCompliance     *prometheus.GaugeVec
	sloBudget         *prometheus.GaugeVec
	sloBurn           *prometheus.GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Enabled reports whether METRICS_ENABLED is unset or truthy. Metrics are on
// by default.
func Enabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("METRICS_ENABLED")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics set once.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// NewMetrics builds a metrics set on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vv_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vv_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "vv_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vv_llm_requests_total",
			Help: "LLM requests by model/operation/status.",
		}, []string{"model", "operation", "status"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vv_llm_request_duration_seconds",
			Help:    "LLM request latency in seconds by model/operation/status.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model", "operation", "status"}),
		llmTokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vv_llm_tokens_total",
			Help: "LLM tokens by model/direction.",
		}, []string{"model", "direction"}),
		reevaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vv_plan_reevaluations_total",
			Help: "Plan reevaluations by outcome.",
		}, []string{"outcome"}),
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vv_plan_decisions_total",
			Help: "Recorded plan modifications by reason.",
		}, []string{"reason"}),
		confidence: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vv_decision_confidence",
			Help:    "Confidence scores assigned to plan modifications.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vv_collaborator_fallbacks_total",
			Help: "AI collaborator calls replaced by a deterministic fallback, by operation.",
		}, []string{"operation"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vv_notifications_total",
			Help: "Notification transitions by status.",
		}, []string{"status"}),
		weather: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vv_weather_updates_total",
			Help: "Weather refreshes by source.",
		}, []string{"source"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "vv_traveler_sessions",
			Help: "Active traveler sessions.",
		}),
		sseClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "vv_sse_clients",
			Help: "Connected SSE clients.",
		}),
		latencyGoal: time.Duration(envutil.Int("SLO_API_LATENCY_MS", 1000)) * time.Millisecond,
		apiTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "vv_api_requests_all_total",
			Help: "Total API requests (all).",
		}),
		apiErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "vv_api_requests_5xx_total",
			Help: "API requests answered with a 5xx status.",
		}),
		apiFast: f.NewCounter(prometheus.CounterOpts{
			Name: "vv_api_requests_within_latency_goal_total",
			Help: "API requests answered within the latency goal.",
		}),
		proposalsResolved: f.NewCounter(prometheus.CounterOpts{
			Name: "vv_proposals_resolved_total",
			Help: "Itinerary change proposals approved or rejected.",
		}),
		proposalsApproved: f.NewCounter(prometheus.CounterOpts{
			Name: "vv_proposals_approved_total",
			Help: "Itinerary change proposals approved.",
		}),
		sloCompliance: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vv_slo_compliance",
			Help: "SLO compliance (SLI) over window.",
		}, []string{"slo", "window"}),
		sloBudget: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vv_slo_error_budget_remaining",
			Help: "Remaining error budget over window.",
		}, []string{"slo", "window"}),
		sloBurn: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vv_slo_burn_rate",
			Help: "Error budget burn rate over window.",
		}, []string{"slo", "window"}),
	}
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
	m.apiTotal.Inc()
	if strings.HasPrefix(status, "5") {
		m.apiErrors.Inc()
	}
	if dur <= m.latencyGoal {
		m.apiFast.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(model, operation, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orUnknown(model)
	operation = orUnknown(operation)
	if status == "" {
		status = "0"
	}
	m.llmRequests.WithLabelValues(model, operation, status).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model, operation, status).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) IncReevaluation(outcome string) {
	if m == nil {
		return
	}
	m.reevaluations.WithLabelValues(orUnknown(outcome)).Inc()
}

func (m *Metrics) ObserveDecision(reason string, confidence float64) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(orUnknown(reason)).Inc()
	m.confidence.Observe(confidence)
}

func (m *Metrics) IncFallback(operation string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(orUnknown(operation)).Inc()
}

func (m *Metrics) IncNotification(status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(orUnknown(status)).Inc()
	switch status {
	case "approved":
		m.proposalsResolved.Inc()
		m.proposalsApproved.Inc()
	case "rejected":
		m.proposalsResolved.Inc()
	}
}

func (m *Metrics) IncWeatherUpdate(source string) {
	if m == nil {
		return
	}
	m.weather.WithLabelValues(orUnknown(source)).Inc()
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func (m *Metrics) SSEClientsInc() {
	if m == nil {
		return
	}
	m.sseClients.Inc()
}

func (m *Metrics) SSEClientsDec() {
	if m == nil {
		return
	}
	m.sseClients.Dec()
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
