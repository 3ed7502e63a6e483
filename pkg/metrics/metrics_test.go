package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_BookingCounters(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.IncBookingCreated("post_purchase", false)
	m.IncBookingCreated("post_purchase", false)
	m.IncBookingCreated("post_purchase", true)
	m.IncBookingCancelled("pre_purchase", "client")
	m.IncSlotConflict("post_purchase")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsCreated.WithLabelValues("post_purchase", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCreated.WithLabelValues("post_purchase", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCancelled.WithLabelValues("pre_purchase", "client")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlotConflicts.WithLabelValues("post_purchase")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("a", prometheus.NewRegistry())
		New("b", prometheus.NewRegistry())
	})
}
