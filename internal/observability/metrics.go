package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionTransitions counts connection state changes by transition name
	// (requested, accepted, ignored, removed).
	ConnectionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alumnet_connection_transitions_total",
		Help: "Total connection request state transitions",
	}, []string{"transition"})

	// ModerationDecisions counts submissions, approvals and rejections per item type.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alumnet_moderation_decisions_total",
		Help: "Total moderation queue decisions by item type",
	}, []string{"type", "decision"})

	// NotificationFanout counts fan-out batches by result.
	NotificationFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alumnet_notifications_fanout_total",
		Help: "Total notification fan-out attempts by result",
	}, []string{"result"})

	// WebSocketConnections is the number of live notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alumnet_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// WebSocketDrops counts messages dropped because a client send buffer was full.
	WebSocketDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alumnet_websocket_dropped_messages_total",
		Help: "Total WebSocket messages dropped due to backpressure",
	})
)

// Transition labels for ConnectionTransitions.
const (
	TransitionRequested = "requested"
	TransitionAccepted  = "accepted"
	TransitionIgnored   = "ignored"
	TransitionRemoved   = "removed"
)

// Decision labels for ModerationDecisions.
const (
	DecisionSubmitted = "submitted"
	DecisionApproved  = "approved"
	DecisionRejected  = "rejected"
	DecisionPublished = "published"
)
