package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Store metrics
	Mutations           *prometheus.CounterVec
	TransactionsCreated prometheus.Counter
	TransactionAmount   prometheus.Histogram
	ListenerNotifies    prometheus.Counter
	PersistWrites       prometheus.Counter

	// Storage metrics
	TierFaults *prometheus.CounterVec
	UsedBytes  prometheus.Gauge

	// Alert metrics
	AlertsSent   prometheus.Counter
	AlertsFailed prometheus.Counter

	// Sync metrics
	SyncReconnects  prometheus.Counter
	SyncDroppedPush prometheus.Counter
	SyncConnected   prometheus.Gauge
	SyncCommands    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketbank_store_mutations_total",
				Help: "Total number of store mutations by operation",
			},
			[]string{"op"},
		),
		TransactionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pocketbank_transactions_created_total",
			Help: "Total number of transactions created",
		}),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pocketbank_transaction_amount",
			Help:    "Distribution of transaction amounts",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		}),
		ListenerNotifies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pocketbank_listener_notifies_total",
			Help: "Total number of coalesced listener notifications fired",
		}),
		PersistWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pocketbank_persist_writes_total",
			Help: "Total number of coalesced state writes to storage",
		}),
		TierFaults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketbank_storage_tier_faults_total",
				Help: "Total number of tier faults that fell through the storage chain",
			},
			[]string{"tier", "op"},
		),
		UsedBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pocketbank_storage_used_bytes",
			Help: "Bytes used across durable storage tiers",
		}),
		AlertsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pocketbank_alerts_sent_total",
			Help: "Total number of transaction alerts delivered",
		}),
		AlertsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pocketbank_alerts_failed_total",
			Help: "Total number of transaction alert deliveries that failed",
		}),
		SyncReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pocketbank_sync_reconnects_total",
			Help: "Total number of sync channel reconnect attempts",
		}),
		SyncDroppedPush: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pocketbank_sync_dropped_pushes_total",
			Help: "Total number of updates dropped while the sync channel was down",
		}),
		SyncConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pocketbank_sync_connected",
			Help: "Whether the sync channel is currently connected (0 or 1)",
		}),
		SyncCommands: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketbank_sync_commands_total",
				Help: "Total number of inbound sync commands by action",
			},
			[]string{"action"},
		),
	}
}
