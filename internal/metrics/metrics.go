package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorconnect_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutorconnect_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorconnect_registrations_total",
			Help: "Total number of registered accounts",
		},
		[]string{"role"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorconnect_booking_transitions_total",
			Help: "Bookings entering each status",
		},
		[]string{"status"},
	)

	EscrowMovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorconnect_escrow_movements_total",
			Help: "Escrow status changes",
		},
		[]string{"escrow_status"},
	)

	LedgerTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorconnect_ledger_transactions_total",
			Help: "Ledger entries appended by type",
		},
		[]string{"type"},
	)

	LedgerVolume = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorconnect_ledger_volume",
			Help: "Sum of ledger entry amounts by type, in currency units",
		},
		[]string{"type"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorconnect_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutorconnect_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRegistration(role string) {
	RegistrationsTotal.WithLabelValues(role).Inc()
}

func RecordBookingTransition(status string) {
	BookingTransitionsTotal.WithLabelValues(status).Inc()
}

func RecordEscrowMovement(escrowStatus string) {
	EscrowMovementsTotal.WithLabelValues(escrowStatus).Inc()
}

func RecordLedgerTransaction(txType string, amount float64) {
	LedgerTransactionsTotal.WithLabelValues(txType).Inc()
	LedgerVolume.WithLabelValues(txType).Add(amount)
}

func RecordEmail(status string) {
	EmailsSentTotal.WithLabelValues(status).Inc()
}
