// Package metrics exposes the gateway's prometheus counters. The /metrics
// endpoint is served by the api package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BroadcastsTotal counts broadcast submissions by outcome:
	// "accepted", "rejected", "upstream_error", "persistence_error".
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dgateway",
			Name:      "broadcasts_total",
			Help:      "Broadcast submissions processed, by outcome",
		},
		[]string{"outcome"},
	)

	// BlocksIndexedTotal counts block events written to the chain store.
	BlocksIndexedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dgateway",
			Name:      "blocks_indexed_total",
			Help:      "Block events upserted into the chain store",
		},
	)

	// SightingsTotal counts newly inserted transaction sightings by status.
	SightingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dgateway",
			Name:      "tx_sightings_total",
			Help:      "Transaction sightings inserted, by status",
		},
		[]string{"status"},
	)

	// SubscriberReconnectsTotal counts event-stream reconnect attempts.
	SubscriberReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dgateway",
			Name:      "subscriber_reconnects_total",
			Help:      "Event stream reconnect attempts",
		},
	)
)
