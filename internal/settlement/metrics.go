package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// BetsPlacedTotal counts bets accepted for submission.
	BetsPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hathor_dice_bets_placed_total",
		Help: "Total number of bets submitted through the wallet",
	})

	// BetsSettledTotal counts terminal transitions by result.
	BetsSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hathor_dice_bets_settled_total",
			Help: "Total number of bets reaching a terminal state",
		},
		[]string{"result"},
	)

	// PendingBets gauges locally-tracked bets awaiting settlement.
	PendingBets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hathor_dice_pending_bets",
		Help: "Number of locally-tracked pending bets",
	})

	// PollDuration tracks reconciliation cycle latency.
	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hathor_dice_settlement_poll_duration_seconds",
		Help:    "Duration of settlement reconciliation cycles",
		Buckets: prometheus.DefBuckets,
	})

	// PollErrorsTotal counts failed reconciliation cycles.
	PollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hathor_dice_settlement_poll_errors_total",
		Help: "Total number of failed settlement poll cycles",
	})

	// DecodeFailuresTotal counts settlement events that could not be
	// decoded.
	DecodeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hathor_dice_settlement_decode_failures_total",
		Help: "Total number of undecodable settlement event payloads",
	})
)
