package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Store persists opaque cache entries keyed by name. Implementations must
// replace entries atomically; concurrent writers may race but must never
// leave a torn entry behind.
type Store interface {
	// Load returns the stored bytes for key, or ok=false when absent.
	Load(key string) ([]byte, bool, error)
	// Save replaces the entry for key.
	Save(key string, data []byte) error
	// Delete removes the entry for key. Deleting an absent key is not an
	// error.
	Delete(key string) error
	// Lock serializes read-modify-write sequences on refresh bookkeeping
	// across processes. The returned function releases the lock.
	Lock(ctx context.Context) (func(), error)
}

// entry is the on-disk envelope wrapped around every payload.
type entry struct {
	Version   int             `json:"version"`
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

const entryVersion = 1

// loadEntry decodes the envelope for key. Corrupt or mismatched entries are
// treated as misses so a bad write never wedges the launcher.
func loadEntry(s Store, key string) (json.RawMessage, time.Time, bool) {
	data, ok, err := s.Load(key)
	if err != nil || !ok {
		return nil, time.Time{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Version != entryVersion {
		return nil, time.Time{}, false
	}
	return e.Payload, e.FetchedAt, true
}

func saveEntry(s Store, key string, fetchedAt time.Time, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}
	data, err := json.Marshal(entry{Version: entryVersion, FetchedAt: fetchedAt, Payload: raw})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return s.Save(key, data)
}

// FileStore keeps each entry as a JSON file under a cache directory. Writes
// go through a temp file and rename so readers never observe partial
// content.
type FileStore struct {
	dir  string
	lock *flock.Flock
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, "cache.lock")),
	}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

func (s *FileStore) Load(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileStore) Save(key string, data []byte) error {
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, sanitizeKey(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpname := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpname)
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpname)
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmpname, target); err != nil {
		os.Remove(tmpname)
		return fmt.Errorf("replace cache entry %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete cache entry %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Lock(ctx context.Context) (func(), error) {
	locked, err := s.lock.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire cache lock: not acquired")
	}
	return func() { _ = s.lock.Unlock() }, nil
}

// sanitizeKey maps a cache key to a safe file name component. Keys are
// internal identifiers, but task-derived keys may still carry separators.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, key)
}

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	lockMu  sync.Mutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (s *MemoryStore) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.entries[key] = cp
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Lock(ctx context.Context) (func(), error) {
	s.lockMu.Lock()
	return s.lockMu.Unlock, nil
}
