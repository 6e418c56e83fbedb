// Package events publishes translation events to Kafka so downstream
// consumers (analytics, history sync) can react. Disabled by default; in
// log-only mode every publish is a debug log line.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"sign-translate-client/internal/observability/metrics"
)

// Publisher publishes prediction and history-change events.
type Publisher struct {
	writerPrediction *kafka.Writer
	writerHistory    *kafka.Writer
	principal        string
	topicPrediction  string
	topicHistory     string
	enabled          bool
	metrics          *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers         []string
	TopicPrediction string
	TopicHistory    string
	Principal       string
	Enabled         bool
}

// New creates a publisher. A nil or disabled config yields log-only mode.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{enabled: false, metrics: m}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:       cfg.Principal,
			topicPrediction: cfg.TopicPrediction,
			topicHistory:    cfg.TopicHistory,
			enabled:         false,
			metrics:         m,
		}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{Dial: dialer.DialFunc}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicPrediction", cfg.TopicPrediction).
		Str("topicHistory", cfg.TopicHistory).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerPrediction: newWriter(cfg.TopicPrediction),
		writerHistory:    newWriter(cfg.TopicHistory),
		principal:        cfg.Principal,
		topicPrediction:  cfg.TopicPrediction,
		topicHistory:     cfg.TopicHistory,
		enabled:          true,
		metrics:          m,
	}
}

// PublishPrediction publishes a final prediction event.
func (p *Publisher) PublishPrediction(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerPrediction, p.topicPrediction, key, event)
}

// PublishHistoryChanged signals that the remote history changed for a user.
func (p *Publisher) PublishHistoryChanged(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerHistory, p.topicHistory, key, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, nil)
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().Err(err).Str("topic", topic).Str("key", key).Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, err)
		return err
	}

	p.metrics.RecordKafkaPublish(topic, nil)
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerPrediction != nil {
		if e := p.writerPrediction.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing prediction writer")
			err = e
		}
	}
	if p.writerHistory != nil {
		if e := p.writerHistory.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing history writer")
			err = e
		}
	}
	return err
}
