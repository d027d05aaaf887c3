package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWindowLabel(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{720 * time.Hour, "30d"},
		{36 * time.Hour, "36h"},
		{2 * time.Hour, "2h"},
		{30 * time.Minute, "30m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatWindowLabel(tt.in))
	}
}

func TestRollingSumEvictsOldest(t *testing.T) {
	r := newRollingSum(2)
	r.add(1)
	r.add(2)
	r.add(4)
	assert.Equal(t, 6.0, r.total)
}

func TestEvaluateComputesCompliance(t *testing.T) {
	m := NewMetrics()
	m.latencyGoal = 100 * time.Millisecond
	for i := 0; i < 8; i++ {
		m.ObserveAPI("GET", "/api/x", "200", 10*time.Millisecond)
	}
	m.ObserveAPI("GET", "/api/x", "500", 10*time.Millisecond)
	m.ObserveAPI("GET", "/api/x", "200", time.Second)
	m.IncNotification("approved")
	m.IncNotification("approved")
	m.IncNotification("rejected")
	m.IncNotification("pending")

	e := newSLOEvaluator(m, nil)
	e.evaluate(context.Background())

	win := e.windowLabel
	assert.InDelta(t, 0.9, testutil.ToFloat64(m.sloCompliance.WithLabelValues(SLOAPIAvailability, win)), 1e-9)
	assert.InDelta(t, 0.9, testutil.ToFloat64(m.sloCompliance.WithLabelValues(SLOAPILatency, win)), 1e-9)
	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(m.sloCompliance.WithLabelValues(SLOProposalAcceptance, win)), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.sloBudget.WithLabelValues(SLOAPIAvailability, win)), 1e-9)

	// No new traffic leaves the window unchanged.
	e.evaluate(context.Background())
	assert.InDelta(t, 0.9, testutil.ToFloat64(m.sloCompliance.WithLabelValues(SLOAPIAvailability, win)), 1e-9)
}

func TestEvaluateAlertsOncePerInterval(t *testing.T) {
	var hits atomic.Int32
	payloads := make(chan map[string]any, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		payloads <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := NewMetrics()
	m.ObserveAPI("GET", "/api/x", "500", time.Millisecond)

	e := newSLOEvaluator(m, nil)
	e.alertWebhook = srv.URL
	e.alertOwner = "oncall"
	e.series = e.series[:1]

	e.evaluate(context.Background())
	m.ObserveAPI("GET", "/api/x", "500", time.Millisecond)
	e.evaluate(context.Background())

	assert.Equal(t, int32(1), hits.Load())
	got := <-payloads
	require.NotNil(t, got)
	assert.Equal(t, "critical", got["severity"])
	assert.Equal(t, SLOAPIAvailability, got["slo"])
}
