// Package store provides the small string key-value contract used to keep viewer state,
// such as the last camera, between runs.
package store

// Store is a string key-value store.
type Store interface {
	// Get returns the value stored under key.
	//
	// Parameters:
	//   - key: the entry name
	//
	// Returns:
	//   - string: the stored value
	//   - bool: false when the key is absent
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	//
	// Parameters:
	//   - key: the entry name
	//   - value: the value to store
	//
	// Returns:
	//   - error: non-nil if the value could not be stored
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	//
	// Parameters:
	//   - key: the entry name
	//
	// Returns:
	//   - error: non-nil if the entry could not be removed
	Remove(key string) error
}
