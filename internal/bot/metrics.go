package bot

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the bot.
type Metrics struct {
	UpdatesProcessed     prometheus.Counter
	CommandsProcessed    *prometheus.CounterVec
	FlowCompletions      *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
}

// NewMetrics registers and returns the bot metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		UpdatesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitatrack_updates_processed_total",
			Help: "Total number of processed Telegram updates",
		}),

		CommandsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitatrack_commands_processed_total",
			Help: "Total number of processed commands by name",
		}, []string{"command"}),

		FlowCompletions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitatrack_flow_completions_total",
			Help: "Total number of completed dialogue flows by type",
		}, []string{"flow"}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitatrack_errors_total",
			Help: "Total number of errors while handling updates",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitatrack_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ServeMetrics exposes /metrics on the given address. It blocks, so callers
// run it in a goroutine.
func ServeMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("Metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Metrics server failed", "error", err, "addr", addr)
	}
}
