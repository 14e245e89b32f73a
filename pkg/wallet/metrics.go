package wallet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestsTotal counts wallet RPC requests by method and transport.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hathor_dice_wallet_requests_total",
			Help: "Total number of wallet RPC requests",
		},
		[]string{"method", "transport"},
	)

	// RequestErrorsTotal counts failed wallet RPC requests by method.
	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hathor_dice_wallet_request_errors_total",
			Help: "Total number of failed wallet RPC requests",
		},
		[]string{"method"},
	)

	// RequestDuration tracks wallet RPC latency.
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hathor_dice_wallet_request_duration_seconds",
		Help:    "Duration of wallet RPC requests",
		Buckets: prometheus.DefBuckets,
	})

	// ConnectionsTotal counts successful wallet connections by mode.
	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hathor_dice_wallet_connections_total",
			Help: "Total number of successful wallet connections",
		},
		[]string{"mode"},
	)

	// BalanceCacheRejectsTotal counts cached balance records rejected for
	// staleness or address mismatch.
	BalanceCacheRejectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hathor_dice_wallet_balance_cache_rejects_total",
		Help: "Total number of cached balance records rejected as stale or mismatched",
	})
)
