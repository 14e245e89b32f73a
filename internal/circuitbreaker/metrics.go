package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// BreakerEnabled indicates whether the circuit breaker allows bet placement.
	BreakerEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hathor_dice_circuit_breaker_enabled",
		Help: "Whether circuit breaker allows bet placement (1=enabled, 0=disabled)",
	})

	// BreakerBalance tracks the last checked wallet balance.
	BreakerBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hathor_dice_circuit_breaker_balance",
		Help: "Last checked wallet balance in base units",
	})

	// BreakerDisableThreshold tracks the current threshold for pausing bets.
	BreakerDisableThreshold = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hathor_dice_circuit_breaker_disable_threshold",
		Help: "Balance threshold for pausing bet placement (dynamically calculated)",
	})

	// BreakerEnableThreshold tracks the current threshold for resuming bets.
	BreakerEnableThreshold = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hathor_dice_circuit_breaker_enable_threshold",
		Help: "Balance threshold for resuming bet placement (with hysteresis)",
	})

	// BreakerAvgBetSize tracks the rolling average bet size.
	BreakerAvgBetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hathor_dice_circuit_breaker_avg_bet_size",
		Help: "Rolling average bet size from recent bets (used for threshold calculation)",
	})

	// BreakerStateChanges tracks the number of times the circuit breaker changed state.
	BreakerStateChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hathor_dice_circuit_breaker_state_changes_total",
		Help: "Total number of times circuit breaker changed state (enabled/disabled)",
	})

	// BreakerCheckDuration tracks the time taken to check the balance.
	BreakerCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hathor_dice_circuit_breaker_check_duration_seconds",
		Help:    "Time taken to check wallet balance",
		Buckets: prometheus.DefBuckets,
	})
)
