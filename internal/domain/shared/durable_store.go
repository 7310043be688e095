package shared

import "context"

// ErrStoreKeyNotFound is returned by DurableStore.Get when the key has no value
var ErrStoreKeyNotFound = NewDomainErrorOfKind(KindNotFound, "STORE_KEY_NOT_FOUND", "No value stored under this key")

// DurableStore is a scoped local key-value store that survives process restarts.
// It gives best-effort durability, not transactional guarantees.
type DurableStore interface {
	// Get returns the value stored under key, or ErrStoreKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources
	Close() error
}

// DurableStoreConfig selects and configures a DurableStore implementation
type DurableStoreConfig struct {
	// Driver is one of "memory", "redis", "sqlite" or "bolt"
	Driver string

	// Path is the database file for the sqlite and bolt drivers
	Path string

	// Namespace scopes keys so several terminals can share one backing store
	Namespace string
}
