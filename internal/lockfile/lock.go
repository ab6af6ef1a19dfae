package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Suffix is appended to a document path to form its lock token path.
const Suffix = ".lock"

// acquirePollInterval bounds how often a blocked acquire re-probes the lock.
// Protected sections are short local file operations, so a small interval
// keeps contention latency low without spinning.
const acquirePollInterval = 25 * time.Millisecond

// PathFor returns the lock token path for a document path.
func PathFor(documentPath string) string {
	return documentPath + Suffix
}

// Guard represents a held lock. Release is safe to call multiple times and on
// every exit path; the usual pattern is an immediate defer after Acquire.
type Guard struct {
	fl   *flock.Flock
	once sync.Once
	err  error
}

// Acquire blocks until the advisory lock on path is held, honoring context
// cancellation. The token file is created if absent. An error is returned
// only when the OS primitive itself fails or the context ends; a busy lock is
// waited on, never reported.
//
// The stale sweep may unlink a token between this acquirer opening it and the
// flock succeeding, leaving the lock held on an orphaned inode while another
// contender locks a freshly created file at the same path. After each
// successful flock, the held descriptor is therefore compared against the
// file currently at path; on a mismatch the orphaned lock is dropped and the
// acquire retried against the current file.
func Acquire(ctx context.Context, path string) (*Guard, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	for {
		fl := flock.New(path)
		locked, err := fl.TryLockContext(ctx, acquirePollInterval)
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", path, err)
		}
		if !locked {
			// TryLockContext only returns false without error on context end.
			return nil, fmt.Errorf("acquire lock %s: %w", path, ctx.Err())
		}
		if heldCurrentFile(fl, path) {
			return &Guard{fl: fl}, nil
		}
		_ = fl.Unlock()
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", path, err)
		}
	}
}

// heldCurrentFile reports whether the locked descriptor still refers to the
// file at path. Flock.Stat reads the held handle, so a swept-and-recreated
// token shows up as a missing path or a different inode.
func heldCurrentFile(fl *flock.Flock, path string) bool {
	held, err := fl.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(held, current)
}

// Release drops the advisory lock. The token file is left in place; a
// subsequent acquirer or the stale sweep deals with it.
func (g *Guard) Release() error {
	if g == nil || g.fl == nil {
		return nil
	}
	g.once.Do(func() {
		if err := g.fl.Unlock(); err != nil {
			g.err = fmt.Errorf("release lock %s: %w", g.fl.Path(), err)
		}
	})
	return g.err
}

// Path returns the token path the guard protects.
func (g *Guard) Path() string {
	if g == nil || g.fl == nil {
		return ""
	}
	return g.fl.Path()
}
