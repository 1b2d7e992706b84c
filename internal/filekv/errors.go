package filekv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"

	"filekv/internal/record"
)

var (
	// ErrNotDir is returned when the store root is missing or not a directory.
	ErrNotDir = errors.New("store root is not a directory")

	// ErrNotEmpty is returned by ReadInto when the destination buffer already holds data.
	ErrNotEmpty = errors.New("buffer is not empty")

	// ErrNotFound is returned when no value exists for the key.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidKey is returned for keys that do not name a single file in the root.
	ErrInvalidKey = errors.New("invalid key")

	// ErrCorrupt marks a record whose framing cannot be decoded. It is always
	// wrapped in an *IOError.
	ErrCorrupt = record.ErrCorrupt
)

// errIsDir is wrapped when a key names a directory instead of a record file.
var errIsDir = errors.New("is a directory")

// Kind classifies an underlying I/O failure independently of the platform.
type Kind int

// Kinds reported by IOError.
const (
	KindOther Kind = iota
	KindPermission
	KindExist
	KindNotExist
	KindInvalidData
	KindUnexpectedEOF
	KindInterrupted
	KindNoSpace
	KindIsDir
)

var kindNames = map[Kind]string{
	KindOther:         "other",
	KindPermission:    "permission denied",
	KindExist:         "already exists",
	KindNotExist:      "does not exist",
	KindInvalidData:   "invalid data",
	KindUnexpectedEOF: "unexpected end of file",
	KindInterrupted:   "interrupted",
	KindNoSpace:       "no space left",
	KindIsDir:         "is a directory",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IOError wraps any filesystem or decoding failure not covered by the
// sentinel errors.
type IOError struct {
	Op   string
	Key  string
	Kind Kind
	Err  error
}

func newIOError(op, key string, err error) *IOError {
	return &IOError{Op: op, Key: key, Kind: classify(err), Err: err}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Key, e.Kind, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err if it is (or wraps) an *IOError.
func KindOf(err error) (Kind, bool) {
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return ioErr.Kind, true
	}
	return KindOther, false
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, errIsDir):
		return KindIsDir
	case errors.Is(err, ErrCorrupt):
		return KindInvalidData
	case errors.Is(err, io.ErrUnexpectedEOF):
		return KindUnexpectedEOF
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, fs.ErrExist):
		return KindExist
	case errors.Is(err, fs.ErrNotExist):
		return KindNotExist
	case errors.Is(err, syscall.EINTR):
		return KindInterrupted
	case errors.Is(err, syscall.ENOSPC):
		return KindNoSpace
	default:
		return KindOther
	}
}
