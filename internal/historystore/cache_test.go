package historystore

import (
	"errors"
	"testing"

	"sign-translate-client/internal/models"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_PutAndGet(t *testing.T) {
	c := newTestCache(t)

	entries := []models.HistoryEntry{
		{ID: "e1", UserID: "u1", Prediction: "hello", Confidence: 95, Timestamp: "2026-08-31T10:00:00Z"},
		{ID: "e2", UserID: "u1", Prediction: "thanks", Confidence: 72, Timestamp: "2026-08-31T09:00:00Z"},
	}
	if err := c.PutList("u1", entries); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := c.GetList("u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Prediction != "hello" || got[0].Confidence != 95 {
		t.Errorf("unexpected first entry: %+v", got[0])
	}
}

func TestCache_GetMissing(t *testing.T) {
	c := newTestCache(t)

	_, err := c.GetList("nobody")
	if !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestCache_PutOverwrites(t *testing.T) {
	c := newTestCache(t)

	c.PutList("u1", []models.HistoryEntry{{ID: "old", Prediction: "hello"}})
	c.PutList("u1", []models.HistoryEntry{{ID: "new", Prediction: "goodbye"}})

	got, err := c.GetList("u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("expected overwritten list, got %+v", got)
	}
}

func TestCache_DropList(t *testing.T) {
	c := newTestCache(t)

	c.PutList("u1", []models.HistoryEntry{{ID: "e1"}})
	if err := c.DropList("u1"); err != nil {
		t.Fatalf("drop failed: %v", err)
	}

	if _, err := c.GetList("u1"); !errors.Is(err, ErrNotCached) {
		t.Errorf("expected ErrNotCached after drop, got %v", err)
	}
}

func TestCache_UsersIsolated(t *testing.T) {
	c := newTestCache(t)

	c.PutList("u1", []models.HistoryEntry{{ID: "a"}})
	c.PutList("u2", []models.HistoryEntry{{ID: "b"}, {ID: "c"}})

	got1, _ := c.GetList("u1")
	got2, _ := c.GetList("u2")
	if len(got1) != 1 || len(got2) != 2 {
		t.Errorf("lists crossed users: %d and %d entries", len(got1), len(got2))
	}
}
