package storage

// Key/value preference storage. Widgets persist their configuration
// as opaque string blobs keyed by widget instance.
//
// Writes are last-write-wins. There are no transactions spanning
// multiple keys, and implementations guard their own state.
type Storage interface {
	// Retrieves the value for key. The bool is false if the key
	// doesn't exist.
	Get(key string) (string, bool, error)

	// Writes a value. Any existing value for the key is replaced.
	Set(key string, value string) error

	// Removes the given keys. Missing keys are ignored.
	Delete(keys ...string) error

	Close() error
}
