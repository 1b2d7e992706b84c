package pebble

import "errors"

// ErrClosed is returned for operations on a closed store.
var ErrClosed = errors.New("pebble store: closed")
