package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "evently"

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	refundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Refund attempts by outcome",
		},
		[]string{"outcome"},
	)

	ticketsIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_issued_total",
			Help:      "Tickets issued by completed bookings",
		},
	)

	walletAmountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_amount_total",
			Help:      "Money moved between wallets",
		},
		[]string{"direction"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of booking and refund transactions",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
)

// Direction labels.
const (
	DirectionPayment = "payment"
	DirectionRefund  = "refund"
)

func TrackBooking(outcome string, duration time.Duration) {
	bookingsTotal.WithLabelValues(outcome).Inc()
	operationDuration.WithLabelValues("booking").Observe(duration.Seconds())
}

func TrackRefund(outcome string, duration time.Duration) {
	refundsTotal.WithLabelValues(outcome).Inc()
	operationDuration.WithLabelValues("refund").Observe(duration.Seconds())
}

func TrackTicketsIssued(n int) {
	if n > 0 {
		ticketsIssuedTotal.Add(float64(n))
	}
}

func TrackWalletAmount(direction string, amount decimal.Decimal) {
	if amount.IsPositive() {
		walletAmountTotal.WithLabelValues(direction).Add(amount.InexactFloat64())
	}
}

// RegisterDBStats exposes connection pool statistics of db.
func RegisterDBStats(db *sql.DB) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, namespace))
}
