package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps all cache entries in a single SQLite database. It is the
// alternative to FileStore for setups where the cache directory lives on a
// filesystem with unreliable rename semantics.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// NewSQLiteStore opens (creating if needed) the cache database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
    key        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cache_locks (
    name      TEXT PRIMARY KEY,
    locked_at TEXT NOT NULL
);`
	if err := s.retryExec(context.Background(), schema); err != nil {
		return fmt.Errorf("initialize cache database: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLiteStore) retryExec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func (s *SQLiteStore) Load(key string) ([]byte, bool, error) {
	var data []byte
	err := retryOnBusy(context.Background(), func() error {
		return s.db.QueryRow(`SELECT data FROM cache_entries WHERE key = ?`, key).Scan(&data)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	return data, true, nil
}

func (s *SQLiteStore) Save(key string, data []byte) error {
	err := s.retryExec(context.Background(), `
INSERT INTO cache_entries (key, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if err := s.retryExec(context.Background(), `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry %s: %w", key, err)
	}
	return nil
}

// Lock takes a row-based advisory lock. Contending processes poll until the
// holder releases or ctx expires; crashed holders are broken after a short
// grace period since refresh bookkeeping is cheap to redo.
func (s *SQLiteStore) Lock(ctx context.Context) (func(), error) {
	const name = "refresh"
	const staleAfter = 5 * time.Second
	for {
		acquired, err := s.tryLock(ctx, name, staleAfter)
		if err != nil {
			return nil, err
		}
		if acquired {
			return func() {
				_ = s.retryExec(context.Background(), `DELETE FROM cache_locks WHERE name = ?`, name)
			}, nil
		}
		select {
		case <-time.After(25 * time.Millisecond):
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire cache lock: %w", ctx.Err())
		}
	}
}

func (s *SQLiteStore) tryLock(ctx context.Context, name string, staleAfter time.Duration) (bool, error) {
	cutoff := time.Now().Add(-staleAfter).UTC().Format(time.RFC3339Nano)
	_ = s.retryExec(ctx, `DELETE FROM cache_locks WHERE name = ? AND locked_at < ?`, name, cutoff)
	err := s.retryExec(ctx, `INSERT INTO cache_locks (name, locked_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339Nano))
	if err == nil {
		return true, nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return false, nil
	}
	return false, fmt.Errorf("acquire cache lock: %w", err)
}
