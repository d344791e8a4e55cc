// Package ratelimit bounds the number of token-validation attempts a single
// client may make within a time window. It is a best-effort throttle, not a
// security boundary on its own.
package ratelimit

import "context"

// Limiter reports whether a client has exhausted its attempt budget.
type Limiter interface {
	// Check records one attempt for clientID and reports whether the client
	// is over its limit. Infrastructure errors are returned so callers can
	// decide between failing open or closed.
	Check(ctx context.Context, clientID string) (limited bool, err error)

	// Cleanup sweeps expired state. Safe to call concurrently with Check
	// and with itself.
	Cleanup(ctx context.Context)
}
