package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus-метрик сервиса
type Metrics struct {
	service string

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database
	DBQueryDuration     *prometheus.HistogramVec
	DBOpenConnections   *prometheus.GaugeVec
	DBInUseConnections  *prometheus.GaugeVec
	DBIdleConnections   *prometheus.GaugeVec
	DBWaitCount         *prometheus.GaugeVec
	DBTransactionsTotal *prometheus.CounterVec

	// Валидация бронирований
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec

	// Очистка старых бронирований
	SweepRunsTotal         *prometheus.CounterVec
	SweptReservationsTotal *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном реестре (используется в тестах)
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		service: serviceName,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation", "status"}),

		DBOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections to the database",
		}, []string{"service"}),

		DBInUseConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		DBIdleConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		DBWaitCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		DBTransactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_transactions_total",
			Help: "Total number of finished transactions",
		}, []string{"service", "result"}),

		ValidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_validations_total",
			Help: "Total number of reservation validations by outcome",
		}, []string{"service", "outcome"}),

		ValidationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reservation_validation_duration_seconds",
			Help:    "Reservation validation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "mode"}),

		SweepRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retention_sweep_runs_total",
			Help: "Total number of retention sweep runs",
		}, []string{"service", "result"}),

		SweptReservationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retention_swept_reservations_total",
			Help: "Total number of reservations removed by the retention sweeper",
		}, []string{"service"}),
	}
}

// ObserveValidation фиксирует результат одной валидации
func (m *Metrics) ObserveValidation(outcome, mode string, elapsed time.Duration) {
	m.ValidationsTotal.WithLabelValues(m.service, outcome).Inc()
	m.ValidationDuration.WithLabelValues(m.service, mode).Observe(elapsed.Seconds())
}

// ObserveSweep фиксирует результат одного прогона очистки
func (m *Metrics) ObserveSweep(deleted int64, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.SweepRunsTotal.WithLabelValues(m.service, result).Inc()
	m.SweptReservationsTotal.WithLabelValues(m.service).Add(float64(deleted))
}
