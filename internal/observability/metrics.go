// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	CandlesIngested   prometheus.Counter
	TicksIngested     prometheus.Counter
	FeedEventsDropped *prometheus.CounterVec
	FeedReconnects    prometheus.Counter

	// Detection metrics
	SpikesDetected    *prometheus.CounterVec
	CandidatesBlocked *prometheus.CounterVec

	// Backtest metrics
	BarsProcessed   prometheus.Counter
	TradesSimulated prometheus.Counter
	RunsCompleted   *prometheus.CounterVec
	RunDuration     prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tradelab"
	}

	return &Metrics{
		CandlesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "candles_ingested_total",
			Help:      "Total number of closed candles ingested",
		}),
		TicksIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "ticks_ingested_total",
			Help:      "Total number of trade ticks ingested",
		}),
		FeedEventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "feed_events_dropped_total",
			Help:      "Total number of malformed feed events dropped by stream kind",
		}, []string{"stream"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "feed_reconnects_total",
			Help:      "Total number of WebSocket reconnect attempts",
		}),

		SpikesDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "momentum",
			Name:      "spikes_detected_total",
			Help:      "Total number of momentum spikes detected by direction",
		}, []string{"direction"}),
		CandidatesBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "candidates_blocked_total",
			Help:      "Total number of entry candidates vetoed by block id",
		}, []string{"block_id"}),

		BarsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "bars_processed_total",
			Help:      "Total number of candles replayed through the engine",
		}),
		TradesSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "trades_simulated_total",
			Help:      "Total number of ledger entries produced",
		}),
		RunsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_completed_total",
			Help:      "Total number of backtest runs by status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one backtest run in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "db_query_duration_seconds",
			Help:      "Database query latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "db_query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCandleIngested increments the candles ingested counter.
func RecordCandleIngested() {
	DefaultMetrics.CandlesIngested.Inc()
}

// RecordTickIngested increments the ticks ingested counter.
func RecordTickIngested() {
	DefaultMetrics.TicksIngested.Inc()
}

// RecordFeedEventDropped counts a malformed feed event by stream name.
func RecordFeedEventDropped(stream string) {
	DefaultMetrics.FeedEventsDropped.WithLabelValues(stream).Inc()
}

// RecordFeedReconnect counts a WebSocket reconnect attempt.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordSpike records a detected momentum spike by direction.
func RecordSpike(direction string) {
	DefaultMetrics.SpikesDetected.WithLabelValues(direction).Inc()
}

// RecordBlocked records a vetoed entry candidate by block id.
func RecordBlocked(blockID string) {
	DefaultMetrics.CandidatesBlocked.WithLabelValues(blockID).Inc()
}

// RecordRun records a completed backtest run.
func RecordRun(status string, durationSeconds float64) {
	DefaultMetrics.RunsCompleted.WithLabelValues(status).Inc()
	DefaultMetrics.RunDuration.Observe(durationSeconds)
}

// RecordReplayVolume records the bar and ledger counts of one replay.
func RecordReplayVolume(bars, trades int) {
	DefaultMetrics.BarsProcessed.Add(float64(bars))
	DefaultMetrics.TradesSimulated.Add(float64(trades))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
