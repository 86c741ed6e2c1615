package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "epoch_rewards_build_info",
			Help: "Build information of the epoch rewards service",
		},
		[]string{"version"},
	)

	CurrentEpoch = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epoch_rewards_current_epoch",
			Help: "Number of activated epochs",
		},
	)

	PendingRoot = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epoch_rewards_pending_root",
			Help: "1 while a staged root is waiting for activation",
		},
	)

	TotalDistributed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epoch_rewards_total_distributed",
			Help: "Tokens paid out so far, immediate claims plus released vesting",
		},
	)

	TotalVesting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epoch_rewards_total_vesting",
			Help: "Tokens locked in unreleased vesting entries",
		},
	)

	RewardsRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epoch_rewards_rewards_remaining",
			Help: "Token balance held by the distribution ledger",
		},
	)

	RewardsAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epoch_rewards_rewards_available",
			Help: "Ledger balance not reserved for vesting",
		},
	)

	LedgerOperationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epoch_rewards_ledger_operation_total",
			Help: "Total number of claim and release operations",
		},
		[]string{"operation", "status"},
	)

	EpochCloseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epoch_rewards_epoch_close_total",
			Help: "Total number of epoch close runs",
		},
		[]string{"status"},
	)

	EpochCloseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "epoch_rewards_epoch_close_duration_seconds",
			Help:    "Duration of epoch close runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~410s
		},
	)
)

// Float converts a token amount for a gauge. Precision loss is acceptable for dashboards.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Status returns the status label for an operation result.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
