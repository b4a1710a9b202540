package port

import "context"

// DurableStore is best-effort key/value persistence. No atomicity or
// transactional guarantee is assumed; callers decide what a failed
// write means for them.
type DurableStore interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
