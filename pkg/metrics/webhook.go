package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var webhookEvents = &Metric{
	ID:          "webhookEvents",
	Name:        "events_total",
	Description: "Provider webhook deliveries, partitioned by event type and outcome.",
	Type:        "counter_vec",
	Args:        []string{"type", "outcome"},
}

var webhookDur = &Metric{
	ID:          "webhookDur",
	Name:        "handle_duration_ms",
	Description: "Webhook processing latency in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"type"},
}

var staleSkipped = &Metric{
	ID:          "staleSkipped",
	Name:        "stale_skipped_total",
	Description: "State writes skipped because a newer event was already applied.",
	Type:        "counter_vec",
	Args:        []string{"entity"},
}

// WebhookMetrics records reconciliation outcomes. A nil *WebhookMetrics is a
// valid no-op recorder.
type WebhookMetrics struct {
	events *prometheus.CounterVec
	dur    *prometheus.HistogramVec
	stale  *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook collectors on reg. A nil reg uses
// the default registry.
func NewWebhookMetrics(reg prometheus.Registerer) (*WebhookMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &WebhookMetrics{}
	for _, def := range []*Metric{webhookEvents, webhookDur, staleSkipped} {
		c, err := register(reg, NewMetric(def, "webhook"))
		if err != nil {
			return nil, err
		}
		switch def {
		case webhookEvents:
			m.events = c.(*prometheus.CounterVec)
		case webhookDur:
			m.dur = c.(*prometheus.HistogramVec)
		case staleSkipped:
			m.stale = c.(*prometheus.CounterVec)
		}
	}
	return m, nil
}

// ObserveEvent counts one delivery and its processing time.
func (m *WebhookMetrics) ObserveEvent(eventType, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, outcome).Inc()
	m.dur.WithLabelValues(eventType).Observe(MillisecondsSince(start))
}

// StaleSkipped counts a write rejected by the ordering guard.
func (m *WebhookMetrics) StaleSkipped(entity string) {
	if m == nil {
		return
	}
	m.stale.WithLabelValues(entity).Inc()
}
