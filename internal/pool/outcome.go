package pool

import (
	"time"

	"curator/internal/media"
)

// Outcome records what happened to a single unit of work. Every submitted
// unit yields exactly one Outcome, success or failure.
type Outcome struct {
	Unit media.Unit

	// Value holds the produced result when Err is nil.
	Value media.Result

	// Err is non-nil when the unit failed. A failed unit never removes the
	// worker that processed it from service.
	Err error

	// FromCache reports whether Value was served from the result cache
	// without invoking a collaborator.
	FromCache bool

	// Fingerprint is the cache key the unit resolved to, when fingerprinting
	// succeeded.
	Fingerprint string

	WorkerID  int
	RequestID string
	Duration  time.Duration
}

// Succeeded reports whether the unit produced a usable value.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}
