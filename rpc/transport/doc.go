// Package transport owns the single duplex byte stream between a client and
// the remote simulation application.
//
// The package provides:
//   - Conn: the primitive operations the wire codec needs — line-delimited
//     text reads/writes and fixed-length binary reads/writes, each read with
//     an explicit timeout bound
//   - Connect: TCP dial plus the startup handshake (start marker line,
//     protocol version line, ready marker reply)
//   - ConnectOrLaunch: the connect-or-start policy — when nothing is
//     listening, the remote application is spawned as a subprocess and its
//     stdout is scanned for the "Running" marker before connecting again
//
// The protocol is strictly synchronous request/response, so a Conn carries no
// internal locking; the client layer serializes calls. A read timeout leaves
// the stream position undefined: the only safe recovery is Close and a fresh
// Connect, never resynchronization on the same stream.
package transport
