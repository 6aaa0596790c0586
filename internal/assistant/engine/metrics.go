package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts engine-level events. All methods are nil-safe so the
// engine can run without a registry (tests, the chat REPL).
type Metrics struct {
	quickHits       prometheus.Counter
	remoteAttempts  *prometheus.CounterVec
	remoteFailures  *prometheus.CounterVec
	breakerOpens    prometheus.Counter
	fallbackReplies prometheus.Counter
}

// NewMetrics builds and registers the engine counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quickHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assistant_quick_responses_total",
			Help: "Messages answered by the quick-response matcher",
		}),
		remoteAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_remote_attempts_total",
			Help: "Chat-completion attempts by candidate model",
		}, []string{"model"}),
		remoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_remote_failures_total",
			Help: "Failed chat-completion attempts by candidate model",
		}, []string{"model"}),
		breakerOpens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assistant_breaker_open_total",
			Help: "Calls short-circuited because the circuit breaker was open",
		}),
		fallbackReplies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assistant_fallback_replies_total",
			Help: "Replies served by the local rule-based responder",
		}),
	}
	reg.MustRegister(m.quickHits, m.remoteAttempts, m.remoteFailures, m.breakerOpens, m.fallbackReplies)
	return m
}

func (m *Metrics) quickHit() {
	if m != nil {
		m.quickHits.Inc()
	}
}

func (m *Metrics) remoteAttempt(model string) {
	if m != nil {
		m.remoteAttempts.WithLabelValues(model).Inc()
	}
}

func (m *Metrics) remoteFailure(model string) {
	if m != nil {
		m.remoteFailures.WithLabelValues(model).Inc()
	}
}

func (m *Metrics) breakerOpen() {
	if m != nil {
		m.breakerOpens.Inc()
	}
}

func (m *Metrics) fallbackReply() {
	if m != nil {
		m.fallbackReplies.Inc()
	}
}
