// Package historystore talks to the external translation-history API and
// keeps a local display cache. Durable persistence lives on the server;
// the cache only covers the last fetched list for offline display.
package historystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sign-translate-client/internal/events"
	"sign-translate-client/internal/models"
	"sign-translate-client/internal/observability/logging"
	"sign-translate-client/internal/observability/metrics"
)

// Client calls the history endpoints. After a successful save or delete it
// signals "history changed" through the event publisher so the caller's
// data layer can invalidate whatever it cached.
type Client struct {
	base      string
	hc        *http.Client
	publisher *events.Publisher
	cache     *Cache

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a history client. publisher and cache may be nil.
func NewClient(base string, publisher *events.Publisher, cache *Cache) *Client {
	return &Client{
		base:      strings.TrimRight(base, "/"),
		hc:        &http.Client{Timeout: 30 * time.Second},
		publisher: publisher,
		cache:     cache,
		logger:    logging.WithComponent("historystore"),
		metrics:   metrics.DefaultMetrics,
	}
}

// List fetches the user's saved history, most recent first, and refreshes
// the local cache on success.
func (c *Client) List(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/history/%s", c.base, userID), nil)
	if err != nil {
		return nil, err
	}

	var entries []models.HistoryEntry
	if err := c.do(req, &entries); err != nil {
		c.metrics.HistoryOps.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("list history: %w", err)
	}
	c.metrics.HistoryOps.WithLabelValues("list", "ok").Inc()

	if c.cache != nil {
		if err := c.cache.PutList(userID, entries); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh history cache")
		}
	}
	return entries, nil
}

// ListCached returns the locally cached list for a user, for offline use.
func (c *Client) ListCached(userID string) ([]models.HistoryEntry, error) {
	if c.cache == nil {
		return nil, ErrNoCache
	}
	return c.cache.GetList(userID)
}

// Save persists one prediction for a user and signals the change.
func (c *Client) Save(ctx context.Context, userID string, p models.PredictionResult) (models.HistoryEntry, error) {
	entry := models.HistoryEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Prediction: p.Prediction,
		Confidence: p.Confidence,
		Timestamp:  p.Timestamp,
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return entry, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/history", bytes.NewReader(payload))
	if err != nil {
		return entry, err
	}
	req.Header.Set("Content-Type", "application/json")

	var saved models.HistoryEntry
	if err := c.do(req, &saved); err != nil {
		c.metrics.HistoryOps.WithLabelValues("save", "error").Inc()
		return entry, fmt.Errorf("save history: %w", err)
	}
	c.metrics.HistoryOps.WithLabelValues("save", "ok").Inc()

	c.signalChanged(ctx, userID, "saved", saved.ID)
	return saved, nil
}

// Delete removes one saved entry and signals the change.
func (c *Client) Delete(ctx context.Context, userID, entryID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/history/%s", c.base, entryID), nil)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		c.metrics.HistoryOps.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete history: %w", err)
	}
	c.metrics.HistoryOps.WithLabelValues("delete", "ok").Inc()

	c.signalChanged(ctx, userID, "deleted", entryID)
	return nil
}

func (c *Client) signalChanged(ctx context.Context, userID, change, entryID string) {
	if c.publisher == nil {
		return
	}
	ev := map[string]string{
		"eventType": "translation.history.changed",
		"userId":    userID,
		"change":    change,
		"entryId":   entryID,
	}
	if err := c.publisher.PublishHistoryChanged(ctx, userID, ev); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to publish history change")
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
