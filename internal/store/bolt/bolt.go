package bolt

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"filekv/internal/logging"
	"filekv/internal/record"
	"filekv/internal/store"
)

var logger = logging.For("store/bolt")

// Store implements store.Store on a single bbolt file. Values are kept in
// the same record encoding the file store writes to disk.
type Store struct {
	db *bolt.DB
}

// Open creates or opens a bbolt database at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	logger.Info("store opened", "path", path)
	return &Store{db: db}, nil
}

func (s *Store) Get(bucket, key string) ([]byte, error) {
	if err := store.CheckNames(bucket, key); err != nil {
		return nil, err
	}
	var val []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return store.ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return store.ErrNotFound
		}
		// Unmarshal copies; v is only valid inside the transaction.
		decoded, err := record.Unmarshal(v)
		if err != nil {
			return fmt.Errorf("decoding %s/%s: %w", bucket, key, err)
		}
		val = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if val == nil {
		val = []byte{}
	}
	return val, nil
}

func (s *Store) Set(bucket, key string, value []byte) error {
	if err := store.CheckNames(bucket, key); err != nil {
		return err
	}
	data, err := record.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return b.Put([]byte(key), data)
	})
}

func (s *Store) Delete(bucket, key string) error {
	if err := store.CheckNames(bucket, key); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil || b.Get([]byte(key)) == nil {
			return store.ErrNotFound
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
