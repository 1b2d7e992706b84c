// Package filekv stores one value per file inside a caller-supplied
// directory. Each file holds a single record (see package record); the
// filename is the key.
//
// The package keeps no state between calls. The root directory must
// already exist; it is checked on every call and never created here.
package filekv

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filekv/internal/logging"
	"filekv/internal/record"
)

var logger = logging.For("filekv")

// MinCompressSize is the value length from which records are compressed.
const MinCompressSize = record.MinCompressSize

// ValidKey reports whether key can be used as a filename directly under the root.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, "/\\\x00")
}

func checkDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return ErrNotDir
	}
	return nil
}

// keyPath validates dir and key and returns the record's path.
func keyPath(dir, key string) (string, error) {
	if err := checkDir(dir); err != nil {
		return "", err
	}
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(dir, key), nil
}

// Write stores value under key in dir, replacing any previous value.
// There is no write-then-rename step: a crash mid-write can leave a
// partial record behind.
func Write(dir, key string, value []byte) (err error) {
	path, err := keyPath(dir, key)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return newIOError("write", key, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = newIOError("write", key, cerr)
		}
	}()

	if err := record.Encode(f, value); err != nil {
		return newIOError("write", key, err)
	}

	logger.Debug("record written", "key", key, "size", len(value), "compressed", record.Compressed(len(value)))
	return nil
}

// Read returns the value stored under key in dir.
func Read(dir, key string) ([]byte, error) {
	var buf bytes.Buffer
	if err := ReadInto(dir, key, &buf); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

// ReadInto decodes the value stored under key into buf, which must be empty.
// On failure buf is left empty.
func ReadInto(dir, key string, buf *bytes.Buffer) error {
	if buf.Len() != 0 {
		return ErrNotEmpty
	}

	f, err := GetRawFile(dir, key)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := record.Decode(f, buf); err != nil {
		buf.Reset()
		return newIOError("read", key, err)
	}
	return nil
}

// GetRawFile opens the record file for key read-only. The caller must
// close it. It is mostly useful for inspecting on-disk metadata.
func GetRawFile(dir, key string) (*os.File, error) {
	path, err := keyPath(dir, key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, newIOError("open", key, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, newIOError("open", key, err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, newIOError("open", key, errIsDir)
	}
	return f, nil
}

// Delete removes the value stored under key in dir.
func Delete(dir, key string) error {
	// Opening first gives the same NotDir/NotFound classification as reads.
	f, err := GetRawFile(dir, key)
	if err != nil {
		return err
	}
	_ = f.Close()

	if err := os.Remove(filepath.Join(dir, key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return newIOError("delete", key, err)
	}

	logger.Debug("record deleted", "key", key)
	return nil
}

// Info describes a record as stored on disk.
type Info struct {
	Size       int64 // file size including the flag byte
	Compressed bool
}

// Stat reports the on-disk size and encoding of the record for key.
func Stat(dir, key string) (Info, error) {
	f, err := GetRawFile(dir, key)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Info{}, newIOError("stat", key, err)
	}

	var flag [1]byte
	if _, err := io.ReadFull(f, flag[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Info{}, newIOError("stat", key, errors.Join(ErrCorrupt, err))
	}

	switch flag[0] {
	case record.FlagRaw:
		return Info{Size: fi.Size()}, nil
	case record.FlagCompressed:
		return Info{Size: fi.Size(), Compressed: true}, nil
	default:
		return Info{}, newIOError("stat", key, ErrCorrupt)
	}
}
