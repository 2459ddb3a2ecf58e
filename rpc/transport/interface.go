package transport

import (
	"time"
)

// Conn is the byte-stream contract the wire codec is written against. The
// two read primitives take an explicit timeout so that callers decide the
// bound per call instead of mutating shared connection state.
//
// Implementations are not required to be safe for concurrent use: the
// protocol allows one in-flight call per connection, enforced by the caller.
type Conn interface {
	// ReadLine blocks until one linefeed-delimited text line is available or
	// the timeout expires. The trailing line terminator is trimmed.
	ReadLine(timeout time.Duration) (string, error)

	// WriteLine writes the text followed by a single linefeed.
	WriteLine(s string) error

	// ReadBytes fills buf completely or fails. Partial socket deliveries are
	// handled internally; the timeout bounds the whole read.
	ReadBytes(buf []byte, timeout time.Duration) error

	// WriteBytes writes the whole buffer.
	WriteBytes(b []byte) error

	// RemoteAddr returns the endpoint address, for logs.
	RemoteAddr() string

	// Close releases the stream. It is idempotent; closing a closed Conn is
	// a no-op.
	Close() error
}
