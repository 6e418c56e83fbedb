package historystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"

	"sign-translate-client/internal/models"
	"sign-translate-client/internal/observability/logging"
)

var (
	// ErrNoCache means no local cache was configured.
	ErrNoCache = errors.New("no local history cache configured")
	// ErrNotCached means the requested list has never been fetched.
	ErrNotCached = errors.New("history list not cached")
	// ErrNoStore means no remote history store was configured.
	ErrNoStore = errors.New("no history store configured")
	// ErrNothingToSave means the current prediction is still the default.
	ErrNothingToSave = errors.New("no prediction to save")
)

// Cache mirrors the last fetched history list per user on disk so the
// client can show something without the API.
type Cache struct {
	db     *badger.DB
	logger zerolog.Logger
}

// NewCache opens (or creates) a badger-backed cache at path.
func NewCache(path string) (*Cache, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(path, "badger"))
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history cache: %w", err)
	}

	return &Cache{
		db:     db,
		logger: logging.WithComponent("historycache"),
	}, nil
}

func listKey(userID string) []byte {
	return []byte("historylist/" + userID)
}

// PutList replaces the cached list for a user.
func (c *Cache) PutList(userID string, entries []models.HistoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history list: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(listKey(userID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store history list: %w", err)
	}

	c.logger.Debug().Str("userId", userID).Int("entries", len(entries)).Msg("History list cached")
	return nil
}

// GetList returns the cached list for a user, or ErrNotCached.
func (c *Cache) GetList(userID string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(listKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entries)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history list: %w", err)
	}
	return entries, nil
}

// DropList removes the cached list for a user.
func (c *Cache) DropList(userID string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(listKey(userID))
	})
	if err != nil {
		return fmt.Errorf("failed to drop history list: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
