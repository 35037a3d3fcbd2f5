package kv

// Store is a synchronous key-value store backed by device-local durable
// storage. Implementations must be safe for concurrent use. Callers treat
// failures as a degraded mode (no durability), never as a fatal condition.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) ([]byte, bool, error)
	// Set writes the value for key, overwriting any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns every stored key starting with prefix.
	Keys(prefix string) ([]string, error)
}
