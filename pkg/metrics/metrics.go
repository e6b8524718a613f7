package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-коллекторов сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	dbQueryDuration     *prometheus.HistogramVec
	dbQueryErrors       *prometheus.CounterVec
	dbConnections       *prometheus.GaugeVec
	bookingOutcomes     *prometheus.CounterVec
	activeHolds         prometheus.Gauge
}

// New создает метрики и регистрирует их в стандартном registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в переданном registry
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: labels,
		}, []string{"operation"}),
		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: labels,
		}, []string{"state"}),
		bookingOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_operations_total",
			Help:        "Outcomes of hold, commit, reschedule and cancel operations",
			ConstLabels: labels,
		}, []string{"operation", "outcome"}),
		activeHolds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "holds_active",
			Help:        "Number of unexpired holds in the in-memory registry",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbConnections,
		m.bookingOutcomes,
		m.activeHolds,
	)

	return m
}

// RecordHTTPRequest учитывает обработанный HTTP запрос
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDBQuery учитывает выполненный запрос к БД
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil && err != sql.ErrNoRows {
		m.dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetDBStats обновляет состояние пула соединений
func (m *Metrics) SetDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.dbConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(stats.Idle))
}

// RecordBookingOutcome учитывает результат операции бронирования (success, conflict, forbidden, ...)
func (m *Metrics) RecordBookingOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.bookingOutcomes.WithLabelValues(operation, outcome).Inc()
}

// SetActiveHolds обновляет количество активных холдов
func (m *Metrics) SetActiveHolds(n int) {
	if m == nil {
		return
	}
	m.activeHolds.Set(float64(n))
}
