package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckinTokensIssued counts issued QR tokens and password codes by kind.
	CheckinTokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lecture",
		Subsystem: "checkin",
		Name:      "tokens_issued_total",
		Help:      "Check-in tokens and codes issued.",
	}, []string{"kind"})

	// CheckinRedeems counts redemption attempts by kind and outcome.
	CheckinRedeems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lecture",
		Subsystem: "checkin",
		Name:      "redeems_total",
		Help:      "Check-in redemption attempts.",
	}, []string{"kind", "outcome"})

	// LeaveDecisions counts leave request decisions by outcome.
	LeaveDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lecture",
		Subsystem: "leave",
		Name:      "decisions_total",
		Help:      "Leave request decisions.",
	}, []string{"decision"})

	// OutboxPublished counts outbox messages published to the broker.
	OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lecture",
		Subsystem: "outbox",
		Name:      "published_total",
		Help:      "Outbox messages published, by topic.",
	}, []string{"topic"})

	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lecture",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
