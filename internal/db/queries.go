package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/cusc/copywriter/internal/errors"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetItem returns the value stored under key. ok is false when the key is absent.
func GetItem(ctx context.Context, q Querier, key string) (value string, ok bool, err error) {
	err = q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func SetItem(ctx context.Context, q Querier, key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := q.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func RemoveItem(ctx context.Context, q Querier, key string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Storage adapts a database to the synchronous key/value interface used by
// the snapshot store and the login gate.
type Storage struct {
	db *sql.DB
}

// NewStorage wraps db.
func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// GetItem implements snapshot.Backend.
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return GetItem(ctx, s.db, key)
}

// SetItem implements snapshot.Backend.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	return SetItem(ctx, s.db, key, value)
}

// RemoveItem implements snapshot.Backend.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	return RemoveItem(ctx, s.db, key)
}

// SetItems writes several keys in one transaction, so a snapshot list and its
// schema version never disagree on disk.
func (s *Storage) SetItems(ctx context.Context, items map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for key, value := range items {
		if err := SetItem(ctx, tx, key, value); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
