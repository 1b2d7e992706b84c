// Package record implements the on-disk value encoding: a single flag byte
// followed by either the raw value or a snappy framed stream.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// MinCompressSize is the smallest value length that gets compressed.
const MinCompressSize = 2048

// Flag values stored in the first byte of every record.
const (
	FlagRaw        byte = 0x00
	FlagCompressed byte = 0x01
)

// ErrCorrupt is returned when a record's framing cannot be decoded.
var ErrCorrupt = errors.New("corrupt record")

// Compressed reports whether a value of length n is stored compressed.
func Compressed(n int) bool {
	return n >= MinCompressSize
}

// Encode writes the record for value to w.
func Encode(w io.Writer, value []byte) error {
	if !Compressed(len(value)) {
		if _, err := w.Write([]byte{FlagRaw}); err != nil {
			return err
		}
		_, err := w.Write(value)
		return err
	}

	if _, err := w.Write([]byte{FlagCompressed}); err != nil {
		return err
	}
	sw := snappy.NewBufferedWriter(w)
	if _, err := sw.Write(value); err != nil {
		_ = sw.Close()
		return err
	}
	// Close flushes the last frame; it does not close w.
	return sw.Close()
}

// Decode reads one record from r and appends the decoded value to buf.
func Decode(r io.Reader, buf *bytes.Buffer) error {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: missing flag byte: %w", ErrCorrupt, io.ErrUnexpectedEOF)
		}
		return err
	}

	switch flag[0] {
	case FlagRaw:
		_, err := buf.ReadFrom(r)
		return err
	case FlagCompressed:
		// The threshold only governs writing; any valid stream is accepted.
		_, err := buf.ReadFrom(snappy.NewReader(r))
		if errors.Is(err, snappy.ErrCorrupt) || errors.Is(err, snappy.ErrUnsupported) {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return err
	default:
		return fmt.Errorf("%w: unknown flag 0x%02x", ErrCorrupt, flag[0])
	}
}

// Marshal returns the encoded record for value.
func Marshal(value []byte) ([]byte, error) {
	var b bytes.Buffer
	b.Grow(len(value) + 1)
	if err := Encode(&b, value); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal decodes a record held in memory.
func Unmarshal(data []byte) ([]byte, error) {
	var b bytes.Buffer
	if err := Decode(bytes.NewReader(data), &b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
