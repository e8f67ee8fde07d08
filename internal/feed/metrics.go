package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// serverMetrics are the feed server's own Prometheus series. Each server
// registers into its own registry.
type serverMetrics struct {
	clients         prometheus.Gauge
	connections     prometheus.Counter
	broadcasts      prometheus.Counter
	dropped         prometheus.Counter
	collectErrors   prometheus.Counter
	collectDuration prometheus.Histogram
	values          *prometheus.GaugeVec
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	f := promauto.With(reg)
	return &serverMetrics{
		clients: f.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_feed_clients_connected",
			Help: "Number of dashboards currently connected to the feed",
		}),
		connections: f.NewCounter(prometheus.CounterOpts{
			Name: "pulse_feed_connections_total",
			Help: "Total number of websocket connections accepted",
		}),
		broadcasts: f.NewCounter(prometheus.CounterOpts{
			Name: "pulse_feed_broadcasts_total",
			Help: "Total number of snapshots broadcast",
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "pulse_feed_frames_dropped_total",
			Help: "Frames dropped because a client was not keeping up",
		}),
		collectErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "pulse_feed_collect_errors_total",
			Help: "Snapshots collected with one or more errors",
		}),
		collectDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pulse_feed_collect_duration_seconds",
			Help:    "Time taken to collect one snapshot in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1},
		}),
		values: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulse_feed_metric_value",
			Help: "Most recent value broadcast for each metric",
		}, []string{"metric"}),
	}
}

// observe records the values of a broadcast snapshot.
func (m *serverMetrics) observe(snap metric.Snapshot) {
	for n, v := range snap {
		m.values.WithLabelValues(string(n)).Set(v)
	}
}
