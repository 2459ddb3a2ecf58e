package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Status Codes
// --------------------------------------------------------------------------

// StatusCode is the trailing integer the remote application appends to every
// command frame, after all declared results.
type StatusCode int32

const (
	// StatusOK means the operation completed; nothing follows the status.
	StatusOK StatusCode = 0
	// StatusInvalidHandle means a handle argument no longer refers to a live
	// remote object.
	StatusInvalidHandle StatusCode = 1
	// StatusWarning means the operation produced data but the remote side
	// attached a diagnostic message (one text line follows the status).
	StatusWarning StatusCode = 2
	// StatusError means the operation did not complete as requested (one text
	// line with diagnostics follows the status).
	StatusError StatusCode = 3
	// StatusLicense means the remote application rejected the operation for
	// licensing reasons.
	StatusLicense StatusCode = 9
)

// HasMessage reports whether a diagnostic text line follows this status code
// on the wire.
func (s StatusCode) HasMessage() bool {
	return s == StatusWarning || s == StatusError
}

// String returns the classification name of the status code.
func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusLicense:
		return "license"
	default:
		return fmt.Sprintf("communication fault (%d)", int32(s))
	}
}

// --------------------------------------------------------------------------
// Error Taxonomy
// --------------------------------------------------------------------------

// Sentinel errors for transport and codec level failures. RemoteError covers
// the failures reported by the remote application itself.
var (
	// ErrNotConnected is returned when an operation is attempted without an
	// established connection and the connection cannot be opened.
	ErrNotConnected = errors.New("simlink: not connected to the remote application")

	// ErrHandshake is returned when the endpoint answered the startup probe
	// with something other than the ready marker.
	ErrHandshake = errors.New("simlink: protocol handshake rejected")

	// ErrTimeout is returned when a read did not complete within its bound.
	// The connection's read position is undefined afterwards; the only safe
	// recovery is a full reconnect.
	ErrTimeout = errors.New("simlink: timeout waiting for the remote application")

	// ErrProtocol is returned on malformed frames, for example a negative or
	// over-bound array length.
	ErrProtocol = errors.New("simlink: protocol fault")
)

// RemoteError is the error reported by the remote application through a
// nonzero status code. Warnings (status 2) are never wrapped in a
// RemoteError; they are surfaced as values alongside successful results.
type RemoteError struct {
	Code    StatusCode
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("simlink: remote %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("simlink: remote %s", e.Code)
}

// IsInvalidHandle reports whether err classifies as a stale/invalid handle
// failure (status 1).
func IsInvalidHandle(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Code == StatusInvalidHandle
}

// IsRemoteError reports whether err carries a remote status classification.
func IsRemoteError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
