package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOnline = "online"
	OutcomeQueued = "queued"
)

// SyncMetrics records sale submission and queue drain activity.
type SyncMetrics struct {
	submitted  *prometheus.CounterVec
	queueDepth prometheus.Gauge
	drained    prometheus.Counter
	drainStops prometheus.Counter
	catalogTS  prometheus.Gauge
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_submitted_total",
		Help: "Sales accepted by the terminal, by outcome.",
	}, []string{"outcome"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pending_sales_queue_depth",
		Help: "Sales waiting in the offline queue.",
	})
	drained := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pending_sales_drained_total",
		Help: "Queued sales confirmed by the backend during drains.",
	})
	drainStops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drain_passes_aborted_total",
		Help: "Drain passes aborted on a failed submission.",
	})
	catalogTS := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_last_sync_timestamp_seconds",
		Help: "Unix time of the last full catalog sync.",
	})
	reg.MustRegister(submitted, queueDepth, drained, drainStops, catalogTS)
	return &SyncMetrics{
		submitted:  submitted,
		queueDepth: queueDepth,
		drained:    drained,
		drainStops: drainStops,
		catalogTS:  catalogTS,
	}
}

// IncSubmitted counts an accepted sale by outcome (online or queued).
func (m *SyncMetrics) IncSubmitted(outcome string) {
	if m == nil || m.submitted == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.submitted.WithLabelValues(outcome).Inc()
}

// SetQueueDepth records the current offline queue length.
func (m *SyncMetrics) SetQueueDepth(depth int64) {
	if m == nil || m.queueDepth == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// IncDrained counts one queued sale confirmed during a drain pass.
func (m *SyncMetrics) IncDrained() {
	if m == nil || m.drained == nil {
		return
	}
	m.drained.Inc()
}

// IncDrainAborted counts a drain pass that stopped on a failure.
func (m *SyncMetrics) IncDrainAborted() {
	if m == nil || m.drainStops == nil {
		return
	}
	m.drainStops.Inc()
}

// SetCatalogSyncedAt records the unix time of the last catalog replace.
func (m *SyncMetrics) SetCatalogSyncedAt(unixSeconds int64) {
	if m == nil || m.catalogTS == nil {
		return
	}
	m.catalogTS.Set(float64(unixSeconds))
}
