// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sign_translate"

// Metrics holds all Prometheus metrics for the client.
type Metrics struct {
	// Live channel metrics
	ConnectionsTotal  prometheus.Counter
	ConnectionsFailed prometheus.Counter
	StateTransitions  *prometheus.CounterVec
	RecognitionActive prometheus.Gauge

	// Frame metrics
	FramesCaptured prometheus.Counter
	FramesSent     prometheus.Counter
	FramesSkipped  prometheus.Counter

	// Prediction metrics
	PredictionsReceived  prometheus.Counter
	MalformedMessages    prometheus.Counter
	PredictionConfidence prometheus.Histogram

	// Batch metrics
	UploadsTotal   *prometheus.CounterVec
	UploadDuration prometheus.Histogram
	UploadBytes    prometheus.Counter

	// History metrics
	HistoryOps *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal  *prometheus.CounterVec
	KafkaPublishErrors *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ConnectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of live channel connection attempts",
		}),
		ConnectionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_failed_total",
			Help:      "Total number of failed connection attempts",
		}),
		StateTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Live channel state transitions by target state",
		}, []string{"state"}),
		RecognitionActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recognition_active",
			Help:      "1 while the frame sampler is armed",
		}),

		FramesCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_captured_total",
			Help:      "Total frames captured from the source",
		}),
		FramesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Total frames sent to the recognition service",
		}),
		FramesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_skipped_total",
			Help:      "Sampler ticks skipped because the channel was not ready",
		}),

		PredictionsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_received_total",
			Help:      "Total predictions decoded from the live channel",
		}),
		MalformedMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_messages_total",
			Help:      "Inbound live messages dropped as malformed",
		}),
		PredictionConfidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_confidence",
			Help:      "Normalized prediction confidence (0..100)",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),

		UploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Batch uploads by terminal outcome",
		}, []string{"outcome"}),
		UploadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Wall time from submit to terminal upload state",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		UploadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		}),

		HistoryOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_ops_total",
			Help:      "History store operations by op and result",
		}, []string{"op", "result"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Kafka publish attempts by topic",
		}, []string{"topic"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Kafka publish failures by topic",
		}, []string{"topic"}),
	}
}

// RecordStateTransition increments the transition counter for a state.
func (m *Metrics) RecordStateTransition(state string) {
	m.StateTransitions.WithLabelValues(state).Inc()
}

// RecordUploadOutcome increments the upload counter for a terminal outcome.
func (m *Metrics) RecordUploadOutcome(outcome string, seconds float64) {
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	m.UploadDuration.Observe(seconds)
}

// RecordKafkaPublish records a publish attempt and its error, if any.
func (m *Metrics) RecordKafkaPublish(topic string, err error) {
	m.KafkaPublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic).Inc()
	}
}
