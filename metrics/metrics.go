// Package metrics exposes the bridge's acceptance-path counters and
// gauges over Prometheus, and the HTTP handler that serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Accepted counts headers written to the chain store, split by the path
// the bridge reports: bootstrap, extend, reorg, or stored_non_canonical.
var Accepted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ethbridge",
	Name:      "headers_accepted_total",
	Help:      "Headers written to the chain store, by acceptance path.",
}, []string{"path"})

// Rejected counts headers that AddBlockHeader refused, split by the
// sentinel error kind that caused the rejection.
var Rejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ethbridge",
	Name:      "headers_rejected_total",
	Help:      "Headers rejected by AddBlockHeader, by reason.",
}, []string{"reason"})

// Reorgs counts canonical-chain reorganizations.
var Reorgs = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ethbridge",
	Name:      "reorgs_total",
	Help:      "Number of times a submitted header overturned the canonical tip.",
})

// ReorgDepth observes the depth the bridge reports per reorg: 1 when the
// new tip is at or above the old tip's height, otherwise the old tip
// height minus the new tip height plus one.
var ReorgDepth = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ethbridge",
	Name:      "reorg_depth_blocks",
	Help:      "Reorg depth reported by the bridge: 1, or old tip height minus new tip height plus one when the new tip is lower.",
	Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 30},
})

// BestBlockNumber tracks the current canonical tip height.
var BestBlockNumber = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ethbridge",
	Name:      "best_block_number",
	Help:      "Height of the current canonical tip.",
})

// Handler returns the HTTP handler that serves the default registry in
// the Prometheus text exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// PromRecorder implements bridge.Recorder against the package-level
// collectors above. It has no state of its own, so the zero value is
// usable directly: metrics.PromRecorder{}.
type PromRecorder struct{}

func (PromRecorder) Accepted(path string) {
	Accepted.WithLabelValues(path).Inc()
}

func (PromRecorder) Rejected(reason string) {
	Rejected.WithLabelValues(reason).Inc()
}

func (PromRecorder) Reorg(depthBlocks int) {
	Reorgs.Inc()
	ReorgDepth.Observe(float64(depthBlocks))
}

func (PromRecorder) BestBlock(number uint64) {
	BestBlockNumber.Set(float64(number))
}
