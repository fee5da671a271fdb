package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for the booking and billing ledgers.
// All methods are safe on a nil receiver.
type Metrics struct {
	bookingsCreated  *prometheus.CounterVec
	bookingConflicts prometheus.Counter
	paymentsRecorded *prometheus.CounterVec
	paymentAmount    *prometheus.CounterVec
	auditDropped     prometheus.Counter
	auditWriteErrors prometheus.Counter
	requestLatency   *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Bookings created",
		}, []string{"source"}),
		bookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken",
		}),
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "billing",
			Name:      "payments_total",
			Help:      "Payment entries recorded",
		}, []string{"method"}),
		paymentAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "billing",
			Name:      "payment_amount_total",
			Help:      "Sum of recorded payment amounts",
		}, []string{"method"}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "audit",
			Name:      "dropped_total",
			Help:      "Audit events dropped because the queue was full",
		}),
		auditWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "audit",
			Name:      "write_errors_total",
			Help:      "Audit events that failed to persist",
		}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.bookingsCreated,
		m.bookingConflicts,
		m.paymentsRecorded,
		m.paymentAmount,
		m.auditDropped,
		m.auditWriteErrors,
		m.requestLatency,
	)
	return m
}

func (m *Metrics) BookingCreated(source string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) BookingConflict() {
	if m == nil {
		return
	}
	m.bookingConflicts.Inc()
}

func (m *Metrics) PaymentRecorded(method string, amount float64) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(method).Inc()
	m.paymentAmount.WithLabelValues(method).Add(amount)
}

func (m *Metrics) AuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}

func (m *Metrics) AuditWriteFailed() {
	if m == nil {
		return
	}
	m.auditWriteErrors.Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(method, route, status).Observe(seconds)
}
