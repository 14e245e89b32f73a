package contract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// StateFetchDuration tracks contract state fetch latency.
	StateFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hathor_dice_contract_state_fetch_duration_seconds",
		Help:    "Duration of contract state fetches",
		Buckets: prometheus.DefBuckets,
	})

	// HistoryFetchDuration tracks contract history fetch latency.
	HistoryFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hathor_dice_contract_history_fetch_duration_seconds",
		Help:    "Duration of contract history fetches",
		Buckets: prometheus.DefBuckets,
	})

	// HistoryEntriesFetched counts history entries returned by the fullnode.
	HistoryEntriesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hathor_dice_contract_history_entries_fetched_total",
		Help: "Total number of contract history entries fetched",
	})

	// FetchErrorsTotal counts failed fullnode requests.
	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hathor_dice_contract_fetch_errors_total",
		Help: "Total number of failed fullnode requests",
	})
)
