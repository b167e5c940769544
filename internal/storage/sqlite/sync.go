package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/storage"
)

func (s *Store) RecordSync(resource string, itemCount int, at time.Time) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO sync_log (resource, fetched_at, item_count) VALUES (?, ?, ?)",
		resource, at.UTC().Format(time.RFC3339), itemCount,
	)
	if err != nil {
		return fmt.Errorf("record sync for %s: %w", resource, err)
	}
	return nil
}

// LastSync returns the last recorded fetch of resource. The bool is false
// when the resource has never been fetched.
func (s *Store) LastSync(resource string) (storage.SyncRecord, bool, error) {
	var fetchedAt string
	rec := storage.SyncRecord{Resource: resource}

	err := s.db.QueryRow(
		"SELECT fetched_at, item_count FROM sync_log WHERE resource = ?", resource,
	).Scan(&fetchedAt, &rec.ItemCount)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.SyncRecord{}, false, nil
	}
	if err != nil {
		return storage.SyncRecord{}, false, fmt.Errorf("read sync for %s: %w", resource, err)
	}

	rec.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return storage.SyncRecord{}, false, fmt.Errorf("parse sync time for %s: %w", resource, err)
	}
	return rec, true, nil
}
