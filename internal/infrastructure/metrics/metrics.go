package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Wallet metrics
	WalletsCreated   prometheus.Counter
	WalletOperations *prometheus.CounterVec
	WalletBalance    *prometheus.GaugeVec

	// Balance movement metrics
	CreditsProcessed  prometheus.Counter
	DebitsProcessed   prometheus.Counter
	MovementAmount    prometheus.Histogram
	MovementDuration  prometheus.Histogram
	InsufficientFunds prometheus.Counter
	MovementErrors    *prometheus.CounterVec

	// Settlement metrics
	SettlementsCreated   prometheus.Counter
	SettlementsConfirmed prometheus.Counter
	SettlementsFailed    prometheus.Counter
	SettlementDuration   prometheus.Histogram
	PlatformFees         prometheus.Histogram

	// Journal metrics
	RecordsAppended *prometheus.CounterVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter
	OutboxBacklog   prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Wallet metrics
		WalletsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_wallets_created_total",
			Help: "Total number of wallets created",
		}),
		WalletOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_wallet_operations_total",
				Help: "Total wallet operations by type",
			},
			[]string{"operation"},
		),
		WalletBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "settlement_wallet_balance",
				Help: "Current wallet balance",
			},
			[]string{"wallet_id", "currency"},
		),

		// Balance movement metrics
		CreditsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_credits_processed_total",
			Help: "Total number of balance credits",
		}),
		DebitsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_debits_processed_total",
			Help: "Total number of balance debits",
		}),
		MovementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlement_movement_amount",
			Help:    "Balance movement amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		MovementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlement_movement_duration_seconds",
			Help:    "Duration of balance movement operations",
			Buckets: prometheus.DefBuckets,
		}),
		InsufficientFunds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_insufficient_funds_total",
			Help: "Total number of debits rejected for insufficient funds",
		}),
		MovementErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_movement_errors_total",
				Help: "Total number of balance movement errors by type",
			},
			[]string{"error_type"},
		),

		// Settlement metrics
		SettlementsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_transactions_created_total",
			Help: "Total number of settlement transactions created",
		}),
		SettlementsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_transactions_confirmed_total",
			Help: "Total number of settlement transactions confirmed",
		}),
		SettlementsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_transactions_failed_total",
			Help: "Total number of settlement transactions failed",
		}),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlement_transaction_duration_seconds",
			Help:    "Duration of settlement operations",
			Buckets: prometheus.DefBuckets,
		}),
		PlatformFees: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlement_platform_fees",
			Help:    "Platform fee amounts collected per settlement",
			Buckets: []float64{0.01, 0.1, 1, 10, 100, 1000, 10000},
		}),

		// Journal metrics
		RecordsAppended: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_records_appended_total",
				Help: "Total journal records appended by type",
			},
			[]string{"type", "category"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "settlement_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "settlement_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_cache_hits_total",
			Help: "Total balance cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_cache_misses_total",
			Help: "Total balance cache misses",
		}),
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "settlement_outbox_errors_total",
			Help: "Total outbox publish errors",
		}),
		OutboxBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "settlement_outbox_backlog",
			Help: "Unpublished outbox events at last poll",
		}),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
