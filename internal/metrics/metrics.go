// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Replay outcomes recorded by offline_replay_total.
const (
	ReplayApplied  = "applied"
	ReplayDropped  = "dropped"
	ReplayDeferred = "deferred"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	offlineMutation *prometheus.CounterVec
	replays         *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rfq_transitions_total",
		Help: "RFQ status transitions.",
	}, []string{"from", "to"})
	offlineMutation := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_offline_mutations_total",
		Help: "Cart mutations queued while the database was unreachable.",
	}, []string{"kind"})
	replays := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offline_replay_total",
		Help: "Queued cart mutations processed by the replayer.",
	}, []string{"result"})
	reg.MustRegister(requests, duration, transitions, offlineMutation, replays)

	return &Metrics{
		requests:        requests,
		duration:        duration,
		transitions:     transitions,
		offlineMutation: offlineMutation,
		replays:         replays,
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncTransition counts an RFQ status change.
func (m *Metrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncOfflineMutation counts a cart mutation queued for replay.
func (m *Metrics) IncOfflineMutation(kind string) {
	if m == nil || m.offlineMutation == nil {
		return
	}
	m.offlineMutation.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncReplay counts a replay outcome.
func (m *Metrics) IncReplay(result string) {
	if m == nil || m.replays == nil {
		return
	}
	m.replays.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
