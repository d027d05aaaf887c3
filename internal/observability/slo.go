package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/yungbote/voyagerverse-backend/internal/platform/envutil"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

const (
	SLOAPIAvailability     = "api_availability"
	SLOAPILatency          = "api_latency"
	SLOProposalAcceptance  = "proposal_acceptance"
	defaultSLOWindowHours  = 720
	defaultSLOEvalInterval = 60 * time.Second
)

type rollingSum struct {
	values []float64
	idx    int
	total  float64
}

func newRollingSum(size int) *rollingSum {
	if size < 1 {
		size = 1
	}
	return &rollingSum{values: make([]float64, size)}
}

func (r *rollingSum) add(v float64) {
	r.total += v - r.values[r.idx]
	r.values[r.idx] = v
	r.idx++
	if r.idx >= len(r.values) {
		r.idx = 0
	}
}

// sloSeries tracks one SLO as a rolling window of total and bad events
// derived from two monotonically increasing counters.
type sloSeries struct {
	name   string
	target float64
	total  func() float64
	bad    func() float64

	prevTotal, prevBad float64
	winTotal, winBad   *rollingSum
}

func (s *sloSeries) step() (total, bad float64) {
	t, b := s.total(), s.bad()
	s.winTotal.add(delta(t, s.prevTotal))
	s.winBad.add(delta(b, s.prevBad))
	s.prevTotal, s.prevBad = t, b
	return s.winTotal.total, s.winBad.total
}

type SLOEvaluator struct {
	metrics *Metrics
	log     *logger.Logger

	interval    time.Duration
	windowLabel string
	series      []*sloSeries

	alertWebhook     string
	alertOwner       string
	alertRunbook     string
	alertMinInterval time.Duration
	alertBurnWarn    float64
	alertBurnCrit    float64
	httpClient       *http.Client
	now              func() time.Time

	alertMu    sync.Mutex
	lastAlerts map[string]time.Time
}

// StartSLOEvaluator runs the evaluator in the background when SLO_ENABLED
// is set.
func (m *Metrics) StartSLOEvaluator(ctx context.Context, log *logger.Logger) {
	if m == nil || !envutil.Bool("SLO_ENABLED", false) {
		return
	}
	eval := newSLOEvaluator(m, log)
	go eval.run(ctx)
	if log != nil {
		log.Info("SLO evaluator started", "window", eval.windowLabel, "interval", eval.interval.String())
	}
}

func newSLOEvaluator(m *Metrics, log *logger.Logger) *SLOEvaluator {
	interval := time.Duration(envutil.Int("SLO_EVAL_INTERVAL_SECONDS", 0)) * time.Second
	if interval <= 0 {
		interval = defaultSLOEvalInterval
	}
	windowHours := envutil.Float("SLO_WINDOW_HOURS", defaultSLOWindowHours)
	if windowHours < 1 {
		windowHours = 24
	}
	window := time.Duration(windowHours * float64(time.Hour))
	size := int(window / interval)

	series := func(name string, target float64, total, bad func() float64) *sloSeries {
		return &sloSeries{
			name:     name,
			target:   clamp01(target),
			total:    total,
			bad:      bad,
			winTotal: newRollingSum(size),
			winBad:   newRollingSum(size),
		}
	}
	apiTotal := func() float64 { return counterValue(m.apiTotal) }

	return &SLOEvaluator{
		metrics:     m,
		log:         log,
		interval:    interval,
		windowLabel: formatWindowLabel(window),
		series: []*sloSeries{
			series(SLOAPIAvailability, envutil.Float("SLO_API_AVAIL_TARGET", 0.995), apiTotal,
				func() float64 { return counterValue(m.apiErrors) }),
			series(SLOAPILatency, envutil.Float("SLO_API_LATENCY_TARGET", 0.95), apiTotal,
				func() float64 { return counterValue(m.apiTotal) - counterValue(m.apiFast) }),
			series(SLOProposalAcceptance, envutil.Float("SLO_PROPOSAL_ACCEPTANCE_TARGET", 0.6),
				func() float64 { return counterValue(m.proposalsResolved) },
				func() float64 { return counterValue(m.proposalsResolved) - counterValue(m.proposalsApproved) }),
		},
		alertWebhook:     envutil.String("SLO_ALERT_WEBHOOK_URL", ""),
		alertOwner:       envutil.String("SLO_ALERT_OWNER", ""),
		alertRunbook:     envutil.String("SLO_ALERT_RUNBOOK_URL", ""),
		alertMinInterval: time.Duration(envutil.Int("SLO_ALERT_MIN_INTERVAL_SECONDS", 900)) * time.Second,
		alertBurnWarn:    envutil.Float("SLO_ALERT_BURN_RATE_WARN", 2),
		alertBurnCrit:    envutil.Float("SLO_ALERT_BURN_RATE_CRIT", 10),
		httpClient:       &http.Client{Timeout: 5 * time.Second},
		now:              time.Now,
		lastAlerts:       map[string]time.Time{},
	}
}

func (e *SLOEvaluator) run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.evaluate(ctx)
		}
	}
}

func (e *SLOEvaluator) evaluate(ctx context.Context) {
	for _, s := range e.series {
		total, bad := s.step()
		e.evalSLO(ctx, s.name, total, bad, s.target)
	}
}

func (e *SLOEvaluator) evalSLO(ctx context.Context, name string, total, bad, target float64) {
	if total <= 0 {
		e.metrics.sloCompliance.WithLabelValues(name, e.windowLabel).Set(1)
		e.metrics.sloBudget.WithLabelValues(name, e.windowLabel).Set(1)
		e.metrics.sloBurn.WithLabelValues(name, e.windowLabel).Set(0)
		return
	}
	sli := clamp01(1 - bad/total)
	burn := 0.0
	if target < 1 {
		burn = (1 - sli) / (1 - target)
	}
	budget := clamp01(1 - burn)
	e.metrics.sloCompliance.WithLabelValues(name, e.windowLabel).Set(sli)
	e.metrics.sloBudget.WithLabelValues(name, e.windowLabel).Set(budget)
	e.metrics.sloBurn.WithLabelValues(name, e.windowLabel).Set(burn)

	if e.alertWebhook == "" || e.alertOwner == "" {
		return
	}
	severity := ""
	if burn >= e.alertBurnCrit {
		severity = "critical"
	} else if burn >= e.alertBurnWarn {
		severity = "warning"
	}
	if severity == "" {
		return
	}
	key := name + ":" + severity
	e.alertMu.Lock()
	last := e.lastAlerts[key]
	if !last.IsZero() && e.now().Sub(last) < e.alertMinInterval {
		e.alertMu.Unlock()
		return
	}
	e.lastAlerts[key] = e.now()
	e.alertMu.Unlock()
	e.sendAlert(ctx, name, severity, sli, target, burn, budget)
}

func (e *SLOEvaluator) sendAlert(ctx context.Context, name, severity string, sli, target, burn, budget float64) {
	payload := map[string]any{
		"title":                  "SLO burn rate alert",
		"severity":               severity,
		"owner":                  e.alertOwner,
		"slo":                    name,
		"window":                 e.windowLabel,
		"sli":                    sli,
		"target":                 target,
		"burn_rate":              burn,
		"error_budget_remaining": budget,
		"runbook":                e.alertRunbook,
		"timestamp":              e.now().UTC().Format(time.RFC3339),
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.alertWebhook, bytes.NewReader(body))
	if err != nil {
		if e.log != nil {
			e.log.Warn("slo alert request build failed", "error", err, "slo", name)
		}
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.httpClient.Do(req)
	if err != nil {
		if e.log != nil {
			e.log.Warn("slo alert post failed", "error", err, "slo", name)
		}
		return
	}
	_ = resp.Body.Close()
	if e.log != nil {
		e.log.Info("slo alert sent", "slo", name, "severity", severity, "status", resp.StatusCode)
	}
}

func counterValue(c prometheus.Counter) float64 {
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		return 0
	}
	return pb.GetCounter().GetValue()
}

func delta(current, prev float64) float64 {
	if current < prev {
		return current
	}
	return current - prev
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatWindowLabel(window time.Duration) string {
	hours := int(window.Hours())
	switch {
	case hours >= 24 && hours%24 == 0:
		return strconv.Itoa(hours/24) + "d"
	case hours >= 1:
		return strconv.Itoa(hours) + "h"
	default:
		return strconv.Itoa(int(window.Minutes())) + "m"
	}
}
