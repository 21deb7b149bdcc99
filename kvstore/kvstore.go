// Package kvstore abstracts the flat key/value storage used for the durable
// mmr state and for locally indexed node content. Backends only need the
// small Store surface; richer database features are deliberately not
// exposed so that host environments can substitute their own storage.
package kvstore

// Store is a flat key/value store.
//
// Get returns (nil, nil) for a missing key: absence is an expected, normal
// outcome for every caller in this module and is never an error. Put
// overwrites silently; write-once discipline is the caller's concern.
type Store interface {
	// Get returns the value for key, or nil if the key is absent.
	Get(key []byte) ([]byte, error)

	// Put stores the value under key.
	Put(key, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// Has reports whether the key is present.
	Has(key []byte) (bool, error)

	// Keys returns all stored keys with the given prefix, in ascending
	// byte order.
	Keys(prefix []byte) ([][]byte, error)

	// Close releases the underlying resources.
	Close() error
}
