package bolt

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"filekv/internal/record"
	"filekv/internal/store"
	"filekv/internal/store/storetest"
)

var _ store.Store = (*Store)(nil)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, tempStore(t))
}

func TestOpenClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file should exist: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestOpenInvalidPath(t *testing.T) {
	if _, err := Open("/nonexistent/dir/test.db"); err == nil {
		t.Fatal("opening db in nonexistent dir should fail")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	value := bytes.Repeat([]byte{'r'}, 10_000)
	if err := s.Set("b", "k", value); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s2.Close() }()
	got, err := s2.Get("b", "k")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, value) {
		t.Fatal("value changed across reopen")
	}
}

func TestStoresRecordEncoding(t *testing.T) {
	s := tempStore(t)
	value := bytes.Repeat([]byte{'c'}, record.MinCompressSize*4)
	if err := s.Set("b", "k", value); err != nil {
		t.Fatal(err)
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte("b")).Get([]byte("k"))
		if raw[0] != record.FlagCompressed {
			t.Errorf("flag: got 0x%02x", raw[0])
		}
		if len(raw) >= len(value) {
			t.Errorf("stored %d bytes for %d byte value", len(raw), len(value))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGetCorruptRecord(t *testing.T) {
	s := tempStore(t)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte("b"))
		if err != nil {
			return err
		}
		return b.Put([]byte("k"), []byte{0x7f})
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("b", "k"); !errors.Is(err, record.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
