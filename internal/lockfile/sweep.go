package lockfile

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"curator/internal/logging"
)

// SweepStale removes lock tokens under dir whose holders are no longer alive.
// Liveness is probed through the advisory lock itself: a token that can be
// locked immediately has no holder and is removed; a token that is busy
// belongs to a live process and is left untouched. The sweep is best-effort
// and idempotent, safe to run at the start of every pipeline run and safe
// when no tokens exist.
func SweepStale(dir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	tokens, err := filepath.Glob(filepath.Join(dir, "*"+Suffix))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, token := range tokens {
		guard, ok := probe(token)
		if !ok {
			logger.Debug("lock token held by live process, skipping",
				logging.String("lock_path", token))
			continue
		}
		// The exclusive lock on the current inode is held across the unlink,
		// so no live holder's token can be removed; an acquirer racing this
		// unlink detects the swap after its flock and retries.
		if err := removeToken(token); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logging.WarnWithContext(logger, "could not remove stale lock token", "lock_sweep_remove_failed",
					logging.String("lock_path", token),
					logging.Error(err),
					logging.String(logging.FieldImpact, "token remains but does not block future runs"))
			}
			guard.Release()
			continue
		}
		guard.Release()
		removed++
		logger.Info("removed stale lock token", logging.String("lock_path", token))
	}
	return removed, nil
}

// probe takes the token's lock without blocking. A busy token has a live
// holder. A lock landing on an inode that no longer matches the path means
// another sweep or acquirer swapped the file mid-probe; the token is treated
// as live and left for the next pass.
func probe(token string) (*Guard, bool) {
	fl := flock.New(token)
	locked, err := fl.TryLock()
	if err != nil || !locked {
		return nil, false
	}
	if !heldCurrentFile(fl, token) {
		_ = fl.Unlock()
		return nil, false
	}
	return &Guard{fl: fl}, true
}
