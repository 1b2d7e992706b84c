package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"filekv/internal/filekv"
	"filekv/internal/logging"
	"filekv/internal/store"
)

var logger = logging.For("store/file")

// Store implements store.Store with one filekv root per bucket:
// <root>/<bucket>/<key>.
type Store struct {
	root string
}

// Open returns a Store rooted at root, which must be an existing directory.
// Bucket directories are created on first Set.
func Open(root string) (*Store, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening store root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("opening store root: %w", filekv.ErrNotDir)
	}
	logger.Info("store opened", "root", root)
	return &Store{root: root}, nil
}

// Root returns the directory holding the bucket directories.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the filekv root directory used for bucket.
func (s *Store) Dir(bucket string) string {
	return filepath.Join(s.root, bucket)
}

func (s *Store) Get(bucket, key string) ([]byte, error) {
	if err := store.CheckNames(bucket, key); err != nil {
		return nil, err
	}
	val, err := filekv.Read(s.Dir(bucket), key)
	if errors.Is(err, filekv.ErrNotDir) {
		// bucket never written
		return nil, store.ErrNotFound
	}
	return val, err
}

func (s *Store) Set(bucket, key string, value []byte) error {
	if err := store.CheckNames(bucket, key); err != nil {
		return err
	}
	dir := s.Dir(bucket)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating bucket: %w", err)
	}
	return filekv.Write(dir, key, value)
}

func (s *Store) Delete(bucket, key string) error {
	if err := store.CheckNames(bucket, key); err != nil {
		return err
	}
	err := filekv.Delete(s.Dir(bucket), key)
	if errors.Is(err, filekv.ErrNotDir) {
		return store.ErrNotFound
	}
	return err
}

// Stat reports the on-disk encoding of a stored value.
func (s *Store) Stat(bucket, key string) (filekv.Info, error) {
	if err := store.CheckNames(bucket, key); err != nil {
		return filekv.Info{}, err
	}
	info, err := filekv.Stat(s.Dir(bucket), key)
	if errors.Is(err, filekv.ErrNotDir) {
		return filekv.Info{}, store.ErrNotFound
	}
	return info, err
}

// Close is a no-op; the file store holds no open handles.
func (s *Store) Close() error {
	return nil
}
