package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("accepted")
	m.ObserveBooking("accepted")
	m.ObserveBooking("rejected")
	m.ObserveFetch("closed")
	m.ObserveBackend("slots", 0.2, true)
	m.ObserveBackend("book", 1.5, false)
	m.ObserveHTTP("POST", 202)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("closed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpTotal.WithLabelValues("POST", "202")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "reserva_booking_requests_total")
	assert.Contains(t, names, "reserva_availability_fetch_total")
	assert.Contains(t, names, "reserva_backend_request_seconds")
	assert.Contains(t, names, "reserva_http_requests_total")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("accepted")
	m.ObserveFetch("ok")
	m.ObserveBackend("slots", 0.1, true)
	m.ObserveHTTP("GET", 200)
}
