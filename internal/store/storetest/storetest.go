// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"filekv/internal/store"
)

// Run exercises s against the store.Store contract. s must be empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"set_and_get", testSetAndGet},
		{"empty_value", testEmptyValue},
		{"overwrite", testOverwrite},
		{"large_value", testLargeValue},
		{"missing", testMissing},
		{"delete", testDelete},
		{"buckets_isolated", testBucketsIsolated},
		{"invalid_names", testInvalidNames},
		{"many_keys", testManyKeys},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, s)
		})
	}
}

func testSetAndGet(t *testing.T, s store.Store) {
	if err := s.Set("b", "key1", []byte("val1")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("b", "key1")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "val1" {
		t.Fatalf("expected val1, got %q", got)
	}
}

func testEmptyValue(t *testing.T, s store.Store) {
	if err := s.Set("b", "empty", nil); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("b", "empty")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func testOverwrite(t *testing.T, s store.Store) {
	if err := s.Set("b", "k", []byte("a much longer first value")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("b", "k", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("b", "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected v2 after overwrite, got %q", got)
	}
}

func testLargeValue(t *testing.T, s store.Store) {
	value := bytes.Repeat([]byte("0123456789"), 10_000)
	if err := s.Set("b", "large", value); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("b", "large")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, value) {
		t.Fatal("large value round trip mismatch")
	}
}

func testMissing(t *testing.T, s store.Store) {
	if _, err := s.Get("b", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get missing key: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get("no-bucket", "k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get missing bucket: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("b", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete missing key: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("no-bucket", "k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete missing bucket: expected ErrNotFound, got %v", err)
	}
}

func testDelete(t *testing.T, s store.Store) {
	if err := s.Set("b", "doomed", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("b", "doomed"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("b", "doomed"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func testBucketsIsolated(t *testing.T, s store.Store) {
	if err := s.Set("bucket1", "k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("bucket2", "k", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	v1, err := s.Get("bucket1", "k")
	if err != nil {
		t.Fatal(err)
	}
	v2, err := s.Get("bucket2", "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(v1) != "v1" || string(v2) != "v2" {
		t.Fatal("buckets should be isolated")
	}
}

func testInvalidNames(t *testing.T, s store.Store) {
	if err := s.Set("b", "../escape", []byte("v")); !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("bad key: expected ErrInvalidKey, got %v", err)
	}
	if err := s.Set("a/b", "k", []byte("v")); !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("bad bucket: expected ErrInvalidKey, got %v", err)
	}
	if _, err := s.Get("b", ""); !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("empty key: expected ErrInvalidKey, got %v", err)
	}
	if err := s.Delete("..", "k"); !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("dot-dot bucket: expected ErrInvalidKey, got %v", err)
	}
}

func testManyKeys(t *testing.T, s store.Store) {
	const n = 500
	for i := 0; i < n; i++ {
		key := strconv.Itoa(i)
		if err := s.Set("many", key, []byte("value-"+key)); err != nil {
			t.Fatal(err)
		}
	}
	for i := n - 1; i >= 0; i-- {
		key := strconv.Itoa(i)
		got, err := s.Get("many", key)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "value-"+key {
			t.Fatalf("key %s: got %q", key, got)
		}
	}
}
