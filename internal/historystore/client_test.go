package historystore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sign-translate-client/internal/models"
)

func newHistoryServer(t *testing.T) (*httptest.Server, *[]models.HistoryEntry) {
	t.Helper()

	stored := []models.HistoryEntry{
		{ID: "e1", UserID: "u1", Prediction: "hello", Confidence: 95, Timestamp: "2026-08-31T10:00:00Z"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var e models.HistoryEntry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		stored = append(stored, e)
		json.NewEncoder(w).Encode(e)
	})
	mux.HandleFunc("/history/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/history/")
		switch r.Method {
		case http.MethodGet:
			var out []models.HistoryEntry
			for _, e := range stored {
				if e.UserID == id {
					out = append(out, e)
				}
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodDelete:
			for i, e := range stored {
				if e.ID == id {
					stored = append(stored[:i], stored[i+1:]...)
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			http.Error(w, "not found", http.StatusNotFound)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &stored
}

func TestClient_List(t *testing.T) {
	srv, _ := newHistoryServer(t)
	c := NewClient(srv.URL, nil, nil)

	entries, err := c.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Prediction != "hello" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestClient_ListRefreshesCache(t *testing.T) {
	srv, _ := newHistoryServer(t)
	cache := newTestCache(t)
	c := NewClient(srv.URL, nil, cache)

	if _, err := c.List(context.Background(), "u1"); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	cached, err := c.ListCached("u1")
	if err != nil {
		t.Fatalf("cache read failed: %v", err)
	}
	if len(cached) != 1 || cached[0].ID != "e1" {
		t.Errorf("cache not refreshed: %+v", cached)
	}
}

func TestClient_SaveAndDelete(t *testing.T) {
	srv, stored := newHistoryServer(t)
	c := NewClient(srv.URL, nil, nil)

	saved, err := c.Save(context.Background(), "u1", models.PredictionResult{
		Prediction: "thank you",
		Confidence: 87,
		Timestamp:  "2026-08-31T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected a generated entry id")
	}
	if len(*stored) != 2 {
		t.Fatalf("expected 2 stored entries, got %d", len(*stored))
	}

	if err := c.Delete(context.Background(), "u1", saved.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(*stored) != 1 {
		t.Errorf("expected 1 stored entry after delete, got %d", len(*stored))
	}
}

func TestClient_DeleteMissing(t *testing.T) {
	srv, _ := newHistoryServer(t)
	c := NewClient(srv.URL, nil, nil)

	err := c.Delete(context.Background(), "u1", "no-such-entry")
	if err == nil {
		t.Fatal("expected error for missing entry")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestClient_ListCachedWithoutCache(t *testing.T) {
	c := NewClient("http://unused", nil, nil)
	if _, err := c.ListCached("u1"); err != ErrNoCache {
		t.Errorf("expected ErrNoCache, got %v", err)
	}
}
