package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dms_cache_fallback_total",
		Help: "Storage facility failures served from the in-memory map",
	}, []string{"scope", "op"})

	CorruptPayloadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dms_corrupt_payload_total",
		Help: "Stored values that failed to decode and were cleared",
	}, []string{"key"})

	SyncPushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dms_sync_push_total",
		Help: "Snapshot pushes to the remote endpoint by result",
	}, []string{"result"})

	SyncPullTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dms_sync_pull_total",
		Help: "Snapshot pulls from the remote endpoint by result",
	}, []string{"result"})

	SyncPushLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dms_sync_push_latency_seconds",
		Help:    "Latency of snapshot pushes",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotsStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dms_snapshots_stored_total",
		Help: "Snapshots written to the document store",
	})

	CollectionRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dms_collection_records",
		Help: "Records per collection in the last stored snapshot",
	}, []string{"collection"})

	CheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dms_pos_checkouts_total",
		Help: "Completed POS checkouts",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dms_pos_checkouts_failed_total",
		Help: "Rejected POS checkouts",
	}, []string{"reason"})

	SalesOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dms_sales_orders_created_total",
		Help: "Distributor orders created",
	})

	StockMovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dms_stock_movements_total",
		Help: "Inventory transactions recorded by type",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
