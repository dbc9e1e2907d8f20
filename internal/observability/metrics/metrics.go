package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics exposes counters/histograms for the public booking flow and
// the backend calls behind it.
type BookingMetrics struct {
	bookingTotal   *prometheus.CounterVec
	fetchTotal     *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	httpTotal      *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reserva",
			Name:      "booking_requests_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reserva",
			Name:      "availability_fetch_total",
			Help:      "Availability fetches by result",
		}, []string{"result"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reserva",
			Name:      "backend_request_seconds",
			Help:      "Latency of Reserva backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reserva",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Portal HTTP requests by method and status code",
		}, []string{"method", "code"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingTotal, m.fetchTotal, m.backendLatency, m.httpTotal)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveFetch(result string) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveBackend(operation string, seconds float64, ok bool) {
	if m == nil {
		return
	}
	status := "error"
	if ok {
		status = "ok"
	}
	m.backendLatency.WithLabelValues(operation, status).Observe(seconds)
}

func (m *BookingMetrics) ObserveHTTP(method string, code int) {
	if m == nil {
		return
	}
	m.httpTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}
