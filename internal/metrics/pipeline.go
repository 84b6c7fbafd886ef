package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records upload job activity.
type PipelineMetrics struct {
	started       prometheus.Counter
	finished      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	uploadedBytes prometheus.Counter
	refreshes     *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	started := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "media_pipeline",
		Name:      "jobs_started_total",
		Help:      "Upload job runs started, retries included.",
	})
	finished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "media_pipeline",
		Name:      "jobs_finished_total",
		Help:      "Upload job runs finished by final stage.",
	}, []string{"stage"})
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "media_pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 180, 600},
	}, []string{"stage"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "media_pipeline",
		Name:      "stage_retries_total",
		Help:      "Backoff retries per stage.",
	}, []string{"stage"})
	uploadedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "media_pipeline",
		Name:      "uploaded_bytes_total",
		Help:      "Bytes streamed to object storage.",
	})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "media_pipeline",
		Name:      "token_refresh_total",
		Help:      "Credential refresh attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(started, finished, stageDuration, retries, uploadedBytes, refreshes)
	return &PipelineMetrics{
		started:       started,
		finished:      finished,
		stageDuration: stageDuration,
		retries:       retries,
		uploadedBytes: uploadedBytes,
		refreshes:     refreshes,
	}
}

// JobStarted counts a new run.
func (m *PipelineMetrics) JobStarted() {
	if m == nil || m.started == nil {
		return
	}
	m.started.Inc()
}

// JobFinished counts a run ending in stage.
func (m *PipelineMetrics) JobFinished(stage string) {
	if m == nil || m.finished == nil {
		return
	}
	m.finished.WithLabelValues(normalizeLabel(stage)).Inc()
}

// ObserveStage records how long a stage took.
func (m *PipelineMetrics) ObserveStage(stage string, d time.Duration) {
	if m == nil || m.stageDuration == nil {
		return
	}
	m.stageDuration.WithLabelValues(normalizeLabel(stage)).Observe(d.Seconds())
}

// IncRetry counts a backoff retry for stage.
func (m *PipelineMetrics) IncRetry(stage string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(stage)).Inc()
}

// AddUploadedBytes adds n streamed bytes.
func (m *PipelineMetrics) AddUploadedBytes(n int64) {
	if m == nil || m.uploadedBytes == nil || n <= 0 {
		return
	}
	m.uploadedBytes.Add(float64(n))
}

// TokenRefresh counts a refresh by outcome.
func (m *PipelineMetrics) TokenRefresh(outcome string) {
	if m == nil || m.refreshes == nil {
		return
	}
	m.refreshes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
