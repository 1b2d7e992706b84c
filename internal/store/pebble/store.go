package pebble

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/pebble"

	"filekv/internal/logging"
	"filekv/internal/record"
	"filekv/internal/store"
)

var logger = logging.For("store/pebble")

// Store implements store.Store on a pebble database. Bucket and key are
// joined with a NUL byte, which valid names never contain.
type Store struct {
	db     *pebble.DB
	closed bool
	mu     sync.RWMutex
}

// Open creates or opens a pebble database in dir.
func Open(dir string) (*Store, error) {
	opts := &pebble.Options{
		Cache:  pebble.NewCache(8 << 20),
		Logger: slogAdapter{},
	}
	defer opts.Cache.Unref()

	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %w", err)
	}
	logger.Info("store opened", "dir", dir)
	return &Store{db: db}, nil
}

func dbKey(bucket, key string) []byte {
	k := make([]byte, 0, len(bucket)+1+len(key))
	k = append(k, bucket...)
	k = append(k, 0)
	return append(k, key...)
}

func (s *Store) Get(bucket, key string) ([]byte, error) {
	if err := store.CheckNames(bucket, key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	data, closer, err := s.db.Get(dbKey(bucket, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	val, err := record.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", bucket, key, err)
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

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.Set(dbKey(bucket, key), data, pebble.Sync)
}

func (s *Store) Delete(bucket, key string) error {
	if err := store.CheckNames(bucket, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	k := dbKey(bucket, key)
	_, closer, err := s.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	_ = closer.Close()
	return s.db.Delete(k, pebble.Sync)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// slogAdapter routes pebble's internal logging through the component logger.
type slogAdapter struct{}

func (slogAdapter) Infof(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...))
}

func (slogAdapter) Errorf(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf(format, args...))
}

func (slogAdapter) Fatalf(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
