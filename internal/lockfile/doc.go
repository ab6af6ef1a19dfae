// Package lockfile provides the cross-process mutual exclusion primitive that
// serializes every cache store transaction system-wide.
//
// Each cache document pairs with an adjacent ".lock" token. The token's
// existence plus OS advisory locking (flock) constitute the lock state, so
// contention behaves identically whether the contenders are separate OS
// processes or goroutines inside one process. Acquisition blocks until the
// holder releases; "busy" is never surfaced as an error.
//
// A token left behind by a crashed holder is stale. SweepStale is the
// idempotent startup hook that removes stale tokens: a token whose advisory
// lock can be grabbed has no live holder and is deleted, while one held by a
// live process is never touched.
package lockfile
