package repository

import "context"

// KeyValueStore is the device-local key-value storage the credential store
// persists into. Get returns ErrKeyNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
