package telemetry

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the collectors the pipeline runner and transformers update.
type Metrics struct {
	Units            *prometheus.CounterVec // result: accumulated, passthrough, rejected
	InputBytes       prometheus.Counter
	OutputBytes      prometheus.Counter
	Bundles          *prometheus.CounterVec   // result: emitted, empty, error
	TransformSeconds *prometheus.HistogramVec // transformer
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Units: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splice",
			Name:      "units_total",
			Help:      "File units seen by the concat stage.",
		}, []string{"result"}),
		InputBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "splice",
			Name:      "input_bytes_total",
			Help:      "Bytes of unit contents accepted by the concat stage.",
		}),
		OutputBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "splice",
			Name:      "output_bytes_total",
			Help:      "Bytes of concatenated output handed to sinks.",
		}),
		Bundles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splice",
			Name:      "bundles_total",
			Help:      "Bundles finalized by the runner.",
		}, []string{"result"}),
		TransformSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splice",
			Name:      "transform_duration_seconds",
			Help:      "Per-unit transformer latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"transformer"}),
	}
}

var (
	defOnce sync.Once
	def     *Metrics
)

// Default returns metrics registered on the global Prometheus registry.
func Default() *Metrics {
	defOnce.Do(func() { def = NewMetrics(prometheus.DefaultRegisterer) })
	return def
}

func Expose(port int) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
	}()
}
