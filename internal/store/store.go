package store

import "filekv/internal/filekv"

// Store is a bucket-scoped key-value store. Buckets and keys follow the
// filename rules of filekv.ValidKey in every implementation, so data can
// move between backends unchanged.
//
// Get and Delete return ErrNotFound for missing keys or buckets; invalid
// names yield ErrInvalidKey.
type Store interface {
	Get(bucket, key string) ([]byte, error)
	Set(bucket, key string, value []byte) error
	Delete(bucket, key string) error
	Close() error
}

var (
	ErrNotFound   = filekv.ErrNotFound
	ErrInvalidKey = filekv.ErrInvalidKey
)

// CheckNames validates a bucket and key pair.
func CheckNames(bucket, key string) error {
	if !filekv.ValidKey(bucket) || !filekv.ValidKey(key) {
		return ErrInvalidKey
	}
	return nil
}
