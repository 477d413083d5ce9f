/*
Package metrics provides Prometheus instrumentation for the chat service.

Metrics are exposed at /metrics on the metrics listener:

	curl http://localhost:9090/metrics

Available metrics:
  - chat_messages_appended_total: messages written to a ledger (counter)
    Labels: room_kind (group, private)
  - chat_append_failures_total: ledger writes that failed (counter)
  - chat_rooms_ensured_total: private room lookups (counter)
    Labels: result (created, existing)
  - chat_subscriptions_active: open live subscriptions (gauge)
    Labels: kind (room, users)
  - chat_snapshots_delivered_total: snapshots pushed to subscribers (counter)
    Labels: kind (room, users)
  - chat_summary_update_failures_total: failed last-message summary updates (counter)
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_appended_total",
			Help: "Messages appended to a room ledger",
		},
		[]string{"room_kind"},
	)

	AppendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_append_failures_total",
			Help: "Ledger appends rejected by the store",
		},
	)

	RoomsEnsured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rooms_ensured_total",
			Help: "Private room ensure calls by outcome",
		},
		[]string{"result"},
	)

	SubscriptionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_subscriptions_active",
			Help: "Live snapshot subscriptions currently open",
		},
		[]string{"kind"},
	)

	SnapshotsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_snapshots_delivered_total",
			Help: "Snapshots delivered to subscribers",
		},
		[]string{"kind"},
	)

	SummaryUpdateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_summary_update_failures_total",
			Help: "Best-effort last-message summary updates that failed",
		},
	)
)

// RecordAppend records the outcome of a ledger append.
func RecordAppend(roomKind string, err error) {
	if err != nil {
		AppendFailures.Inc()
		return
	}
	MessagesAppended.WithLabelValues(roomKind).Inc()
}

// RecordEnsure records whether EnsureRoom created a room.
func RecordEnsure(created bool) {
	if created {
		RoomsEnsured.WithLabelValues("created").Inc()
		return
	}
	RoomsEnsured.WithLabelValues("existing").Inc()
}

// TrackSubscription adjusts the open subscription gauge.
func TrackSubscription(kind string, open bool) {
	if open {
		SubscriptionsActive.WithLabelValues(kind).Inc()
		return
	}
	SubscriptionsActive.WithLabelValues(kind).Dec()
}

// RecordSnapshot counts one delivered snapshot.
func RecordSnapshot(kind string) {
	SnapshotsDelivered.WithLabelValues(kind).Inc()
}
