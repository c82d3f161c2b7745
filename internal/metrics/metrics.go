package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catering",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catering",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	OrdersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catering",
			Name:      "orders_created_total",
			Help:      "Orders created, by source.",
		},
		[]string{"source"},
	)

	PaymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catering",
			Name:      "payments_recorded_total",
			Help:      "Bill payments recorded, by source.",
		},
		[]string{"source"},
	)

	PaymentAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catering",
			Name:      "payment_amount_total",
			Help:      "Sum of recorded bill payments in rupees.",
		},
	)

	LedgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catering",
			Name:      "ledger_operations_total",
			Help:      "Ledger-mutating operations by kind and outcome.",
		},
		[]string{"operation", "result"},
	)

	NotificationSubscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catering",
			Name:      "notification_subscribers",
			Help:      "Connected notification streams by transport.",
		},
		[]string{"transport"},
	)

	ScheduledJobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catering",
			Name:      "scheduled_job_runs_total",
			Help:      "Cron job executions by job and outcome.",
		},
		[]string{"job", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		OrdersCreated,
		PaymentsRecorded,
		PaymentAmount,
		LedgerOperations,
		NotificationSubscribers,
		ScheduledJobRuns,
	)
}

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// CanonicalPath replaces numeric path segments with ":id" to bound label cardinality.
func CanonicalPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		numeric := true
		for _, c := range p {
			if c < '0' || c > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
