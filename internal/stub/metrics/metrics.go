// Package metrics defines the Prometheus metrics exported by the stub
// backend. It is the single source of truth for metric names, labels,
// and help strings; promauto registers everything with the default
// registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderdesk"

// OrdersCreatedTotal counts orders created, labelled by source.
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by source.",
	},
	[]string{"source"},
)

// StatusTransitionsTotal counts applied order status transitions.
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Total number of order status transitions applied.",
	},
	[]string{"from", "to"},
)

// EventsPublishedTotal counts order events fanned out to the stream,
// labelled by event type.
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_events_published_total",
		Help:      "Total number of order events published to stream subscribers.",
	},
	[]string{"type"},
)

// StreamClients tracks the number of currently connected event-stream
// subscribers.
var StreamClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_clients",
		Help:      "Number of currently connected order event stream clients.",
	},
)

// RefreshesTotal counts token refresh calls, labelled by outcome
// ("ok" or "rejected").
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of token refresh attempts, by outcome.",
	},
	[]string{"outcome"},
)
