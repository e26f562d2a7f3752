package out

import "context"

// KeyValueStore is the durable local persistence capability. Get returns
// apperrors.ErrNotFound when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
