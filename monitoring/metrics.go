// Package monitoring exposes prediction metrics and watches the model artifacts.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the prediction collectors. A nil *Metrics records nothing.
type Metrics struct {
	predictions     *prometheus.CounterVec
	duration        prometheus.Histogram
	memoLookups     *prometheus.CounterVec
	artifactChanges *prometheus.CounterVec
	lastPrediction  prometheus.Gauge
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calories_predictions_total",
				Help: "Total number of calorie predictions by outcome",
			},
			[]string{"outcome", "stage"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "calories_prediction_duration_seconds",
				Help:    "Duration of scaler transform plus model predict in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		memoLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calories_memo_lookups_total",
				Help: "Prediction memo lookups by result",
			},
			[]string{"result"},
		),
		artifactChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calories_artifact_changes_total",
				Help: "File system events seen on loaded artifacts",
			},
			[]string{"artifact", "op"},
		),
		lastPrediction: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "calories_last_prediction_kcal",
				Help: "Most recent successful prediction in kcal",
			},
		),
	}
	reg.MustRegister(m.predictions, m.duration, m.memoLookups, m.artifactChanges, m.lastPrediction)
	return m
}

// ObservePrediction records a successful prediction.
func (m *Metrics) ObservePrediction(value float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(OutcomeSuccess, "").Inc()
	m.duration.Observe(elapsed.Seconds())
	m.lastPrediction.Set(value)
}

// ObserveFailure records a failed prediction at the given stage.
func (m *Metrics) ObserveFailure(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(OutcomeFailure, stage).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) MemoHit() {
	if m == nil {
		return
	}
	m.memoLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) MemoMiss() {
	if m == nil {
		return
	}
	m.memoLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) ArtifactChanged(artifact, op string) {
	if m == nil {
		return
	}
	m.artifactChanges.WithLabelValues(artifact, op).Inc()
}
