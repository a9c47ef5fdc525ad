// Package metrics carries the prometheus instrumentation and the health
// snapshot the gateway's /healthz reports from.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every collector. All collectors are registered on the
// default registry at construction.
type Metrics struct {
	TicksTotal     prometheus.Counter
	MalformedTicks prometheus.Counter
	FeedReconnects prometheus.Counter
	DroppedTicks   prometheus.Counter

	BarsOpened *prometheus.CounterVec
	BarsMerged *prometheus.CounterVec

	SnapshotsTotal      prometheus.Counter
	SnapshotComputeDur  prometheus.Histogram
	InsufficientHistory prometheus.Counter

	BroadcastDrops         *prometheus.CounterVec
	Subscribers            prometheus.Gauge
	SubscriberSendFailures prometheus.Counter

	E2ELatency prometheus.Histogram
}

// New builds and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feed_ticks_total",
			Help: "Ticks accepted from the upstream feed.",
		}),
		MalformedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feed_malformed_frames_total",
			Help: "Upstream frames dropped because they did not parse into a tick.",
		}),
		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feed_reconnects_total",
			Help: "Feed reconnect attempts after a dropped connection.",
		}),
		DroppedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_dropped_total",
			Help: "Ticks or snapshots dropped on a full pipeline channel.",
		}),
		BarsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candles_opened_total",
			Help: "New bars opened, by timeframe.",
		}, []string{"timeframe"}),
		BarsMerged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candles_merged_total",
			Help: "Ticks merged into an existing bar, by timeframe.",
		}, []string{"timeframe"}),
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshots_published_total",
			Help: "Indicator snapshots published to the fan-out.",
		}),
		SnapshotComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "snapshot_compute_seconds",
			Help:    "Wall time of one full indicator recomputation.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		InsufficientHistory: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshots_insufficient_history_total",
			Help: "Recomputations skipped because the series was too short.",
		}),
		BroadcastDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcast_drops_total",
			Help: "Envelopes dropped at the fan-out, by consumer.",
		}, []string{"consumer"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "websocket_subscribers",
			Help: "Currently connected websocket subscribers.",
		}),
		SubscriberSendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "websocket_send_failures_total",
			Help: "Websocket sends that failed and evicted the subscriber.",
		}),
		E2ELatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tick_to_process_seconds",
			Help:    "Delay between the exchange tick timestamp and local processing.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal, m.MalformedTicks, m.FeedReconnects, m.DroppedTicks,
		m.BarsOpened, m.BarsMerged,
		m.SnapshotsTotal, m.SnapshotComputeDur, m.InsufficientHistory,
		m.BroadcastDrops, m.Subscribers, m.SubscriberSendFailures,
		m.E2ELatency,
	)
	return m
}
