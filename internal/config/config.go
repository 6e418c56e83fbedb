// Package config loads client configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration holds all settings for the translation client.
type Configuration struct {
	Service       ServiceConfig
	Live          LiveConfig
	Upload        UploadConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig identifies this client and the remote API.
type ServiceConfig struct {
	Principal string // Principal name used in event headers
	APIBase   string // Base URL for upload/process/history endpoints
	UserID    string // Optional user identity attached to uploads and history
}

// LiveConfig controls the live recognition pipeline.
type LiveConfig struct {
	SocketURL      string // WebSocket URL of the recognition service
	Enabled        bool   // When false the channel always enters fallback mode
	SampleInterval time.Duration
	DialTimeout    time.Duration
	Language       string // Sign language requested from the service
}

// UploadConfig controls batch upload validation.
type UploadConfig struct {
	MaxFileBytes int64
	AllowedTypes []string
}

// KafkaConfig controls the optional event publisher.
type KafkaConfig struct {
	Enabled          bool
	Brokers          []string
	TopicPrediction  string
	TopicHistorySync string
}

// ObservabilityConfig controls logging and metrics.
type ObservabilityConfig struct {
	LogLevel    string
	MetricsAddr string
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() *Configuration {
	return &Configuration{
		Service: ServiceConfig{
			Principal: envOrDefault("SERVICE_PRINCIPAL", "svc-sign-translate"),
			APIBase:   envOrDefault("TRANSLATE_API_URL", "http://localhost:8000/api"),
			UserID:    os.Getenv("TRANSLATE_USER_ID"),
		},
		Live: LiveConfig{
			SocketURL:      envOrDefault("TRANSLATE_WS_URL", "ws://localhost:8000/ws/translate"),
			Enabled:        envBoolOrDefault("LIVE_ENABLED", true),
			SampleInterval: time.Duration(envIntOrDefault("SAMPLE_INTERVAL_MS", 200)) * time.Millisecond,
			DialTimeout:    envDurationOrDefault("LIVE_DIAL_TIMEOUT", 10*time.Second),
			Language:       envOrDefault("TRANSLATE_LANGUAGE", "asl"),
		},
		Upload: UploadConfig{
			MaxFileBytes: int64(envIntOrDefault("MAX_UPLOAD_MB", 100)) * 1024 * 1024,
			AllowedTypes: envListOrDefault("UPLOAD_ALLOWED_TYPES",
				[]string{"video/mp4", "video/webm", "video/avi", "video/quicktime"}),
		},
		Kafka: KafkaConfig{
			Enabled:          envBoolOrDefault("KAFKA_ENABLED", false),
			Brokers:          envListOrDefault("KAFKA_BROKERS", nil),
			TopicPrediction:  envOrDefault("KAFKA_TOPIC_PREDICTION", "translation.prediction.final"),
			TopicHistorySync: envOrDefault("KAFKA_TOPIC_HISTORY", "translation.history.changed"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envListOrDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
