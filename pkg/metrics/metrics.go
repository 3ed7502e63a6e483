package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "consultations"

// Metrics набор метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration     *prometheus.HistogramVec
	DBErrorsTotal       *prometheus.CounterVec
	DBOpenConnections   *prometheus.GaugeVec
	DBInUseConnections  *prometheus.GaugeVec
	DBIdleConnections   *prometheus.GaugeVec
	DBWaitCount         *prometheus.GaugeVec

	BookingsCreated   *prometheus.CounterVec
	BookingsCancelled *prometheus.CounterVec
	SlotConflicts     *prometheus.CounterVec
}

// New создает и регистрирует метрики в переданном реестре
func New(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "db_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBOpenConnections:  newPoolGauge("db_open_connections", "Open connections", constLabels),
		DBInUseConnections: newPoolGauge("db_in_use_connections", "Connections in use", constLabels),
		DBIdleConnections:  newPoolGauge("db_idle_connections", "Idle connections", constLabels),
		DBWaitCount:        newPoolGauge("db_wait_count", "Total connections waited for", constLabels),
		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "bookings_created_total",
			Help:        "Bookings created",
			ConstLabels: constLabels,
		}, []string{"track", "manual"}),
		BookingsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "bookings_cancelled_total",
			Help:        "Bookings cancelled",
			ConstLabels: constLabels,
		}, []string{"track", "actor"}),
		SlotConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "slot_conflicts_total",
			Help:        "Booking attempts rejected because the slot was full",
			ConstLabels: constLabels,
		}, []string{"track"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBErrorsTotal,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.BookingsCreated,
		m.BookingsCancelled,
		m.SlotConflicts,
	)

	return m
}

func newPoolGauge(name, help string, constLabels prometheus.Labels) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        name,
		Help:        help,
		ConstLabels: constLabels,
	}, []string{"db"})
}

// IncBookingCreated учитывает созданное бронирование
func (m *Metrics) IncBookingCreated(track string, manual bool) {
	m.BookingsCreated.WithLabelValues(track, strconv.FormatBool(manual)).Inc()
}

// IncBookingCancelled учитывает отмену
func (m *Metrics) IncBookingCancelled(track, actor string) {
	m.BookingsCancelled.WithLabelValues(track, actor).Inc()
}

// IncSlotConflict учитывает попытку занять заполненный слот
func (m *Metrics) IncSlotConflict(track string) {
	m.SlotConflicts.WithLabelValues(track).Inc()
}

// Noop заглушка для запуска без метрик
type Noop struct{}

func (Noop) IncBookingCreated(string, bool)     {}
func (Noop) IncBookingCancelled(string, string) {}
func (Noop) IncSlotConflict(string)             {}
