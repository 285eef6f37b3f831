package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Settlement metrics
	SettlementsComputed prometheus.Counter
	SettlementDuration  prometheus.Histogram
	SettlementTransfers prometheus.Histogram
	SettlementErrors    *prometheus.CounterVec
	StaleSnapshots      prometheus.Counter

	// Trip metrics
	TripsCreated   prometheus.Counter
	TripOperations *prometheus.CounterVec

	// Expense metrics
	ExpensesCreated prometheus.Counter
	ExpensesUpdated prometheus.Counter
	ExpensesDeleted prometheus.Counter
	ExpenseAmount   *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Settlement metrics
		SettlementsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsettle_settlements_computed_total",
			Help: "Total number of settlement snapshots computed",
		}),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsettle_settlement_duration_seconds",
			Help:    "Duration of settlement recomputation",
			Buckets: prometheus.DefBuckets,
		}),
		SettlementTransfers: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsettle_settlement_transfers",
			Help:    "Number of transfers per settlement plan",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		SettlementErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripsettle_settlement_errors_total",
				Help: "Total number of settlement errors by type",
			},
			[]string{"error_type"},
		),
		StaleSnapshots: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsettle_stale_snapshots_total",
			Help: "Total number of snapshot writes superseded by a newer ledger version",
		}),

		// Trip metrics
		TripsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsettle_trips_created_total",
			Help: "Total number of trips created",
		}),
		TripOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripsettle_trip_operations_total",
				Help: "Total trip operations by type",
			},
			[]string{"operation"},
		),

		// Expense metrics
		ExpensesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsettle_expenses_created_total",
			Help: "Total number of expenses created",
		}),
		ExpensesUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsettle_expenses_updated_total",
			Help: "Total number of expenses updated",
		}),
		ExpensesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsettle_expenses_deleted_total",
			Help: "Total number of expenses deleted",
		}),
		ExpenseAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tripsettle_expense_amount",
				Help:    "Expense amounts by currency",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
			},
			[]string{"currency"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripsettle_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tripsettle_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripsettle_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tripsettle_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tripsettle_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripsettle_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripsettle_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tripsettle_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripsettle_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsettle_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsettle_outbox_failures_total",
			Help: "Total outbox publish failures",
		}),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripsettle_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
