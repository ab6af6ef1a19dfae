package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"curator/internal/lockfile"
	"curator/internal/logging"
	"curator/internal/media"
)

// Store is a durable fingerprint-to-value mapping for one analysis category.
// All disk access happens inside a cross-process lock transaction; the struct
// additionally keeps the last loaded snapshot as an in-memory view for cheap
// introspection.
type Store[V any] struct {
	category media.Category
	path     string
	lockPath string
	logger   *slog.Logger

	mu   sync.RWMutex
	view map[string]V
}

func newStore[V any](dir string, category media.Category, document string, logger *slog.Logger) *Store[V] {
	logger = logging.NewComponentLogger(logger, "cache")
	path := filepath.Join(dir, document)
	return &Store[V]{
		category: category,
		path:     path,
		lockPath: lockfile.PathFor(path),
		logger:   logger.With(logging.String(logging.FieldCategory, string(category))),
		view:     make(map[string]V),
	}
}

// Category returns the analysis category this store serves.
func (s *Store[V]) Category() media.Category { return s.category }

// Path returns the backing document path.
func (s *Store[V]) Path() string { return s.path }

// LockPath returns the adjacent lock token path.
func (s *Store[V]) LockPath() string { return s.lockPath }

// Get returns the cached value for fingerprint, if any. The full snapshot is
// reloaded from disk under the cross-process lock so the read observes every
// committed write from any process. Get never mutates the store.
func (s *Store[V]) Get(ctx context.Context, fingerprint string) (V, bool, error) {
	var zero V
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return zero, false, errors.New("fingerprint cannot be empty")
	}

	guard, err := lockfile.Acquire(ctx, s.lockPath)
	if err != nil {
		return zero, false, fmt.Errorf("cache get: %w", err)
	}
	defer guard.Release()

	snapshot := s.load()
	s.replaceView(snapshot)

	value, found := snapshot[fingerprint]
	return value, found, nil
}

// Set inserts or overwrites a single entry and persists the full snapshot
// atomically. The current document is reloaded first so entries committed by
// other processes since our last load survive the write. A persistence error
// is returned to the caller; the computed value stays usable for the run.
func (s *Store[V]) Set(ctx context.Context, fingerprint string, value V) error {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return errors.New("fingerprint cannot be empty")
	}

	guard, err := lockfile.Acquire(ctx, s.lockPath)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	defer guard.Release()

	snapshot := s.load()
	snapshot[fingerprint] = value

	if err := s.persist(snapshot); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	s.replaceView(snapshot)

	s.logger.Debug("cached entry",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.Int("entry_count", len(snapshot)))
	return nil
}

// Snapshot returns a copy of the full mapping as currently persisted.
func (s *Store[V]) Snapshot(ctx context.Context) (map[string]V, error) {
	guard, err := lockfile.Acquire(ctx, s.lockPath)
	if err != nil {
		return nil, fmt.Errorf("cache snapshot: %w", err)
	}
	defer guard.Release()

	snapshot := s.load()
	s.replaceView(snapshot)
	return snapshot, nil
}

// Count returns the entry count of the in-memory view (last loaded snapshot).
func (s *Store[V]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.view)
}

// Fingerprints returns the sorted keys of the in-memory view.
func (s *Store[V]) Fingerprints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.view))
	for key := range s.view {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes the backing document under the lock. Entries are never pruned
// automatically; this is the explicit operator action.
func (s *Store[V]) Clear(ctx context.Context) error {
	guard, err := lockfile.Acquire(ctx, s.lockPath)
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	defer guard.Release()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache document: %w", err)
	}
	s.replaceView(make(map[string]V))
	return nil
}

// load reads the document into a fresh map. Caller must hold the lock. A
// missing document is an empty store; a corrupt or unreadable one is treated
// as empty with a surfaced warning, never a fatal abort, because rebuilding
// the cache is always safe.
func (s *Store[V]) load() map[string]V {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "could not read cache document", "cache_read_failed",
				logging.String("path", s.path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "treating store as empty; entries will be recomputed"))
		}
		return make(map[string]V)
	}
	if len(data) == 0 {
		return make(map[string]V)
	}

	entries := make(map[string]V)
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.WarnWithContext(s.logger, "cache document is corrupt", "cache_parse_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the document to silence this warning"),
			logging.String(logging.FieldImpact, "treating store as empty; entries will be recomputed"))
		return make(map[string]V)
	}
	return entries
}

// persist writes the full snapshot atomically via a temp file and rename.
// Caller must hold the lock.
func (s *Store[V]) persist(snapshot map[string]V) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := writeFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := renameFile(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store[V]) replaceView(snapshot map[string]V) {
	view := make(map[string]V, len(snapshot))
	for key, value := range snapshot {
		view[key] = value
	}
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
}
