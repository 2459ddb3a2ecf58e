// Package simserver implements the server side of the wire protocol: a
// scriptable stand-in for the remote simulation application.
//
// It exists for two consumers:
//
//   - the package tests of rpc/client and rpc/transport, which register
//     per-command handlers to script exact byte sequences (including error
//     statuses and delayed replies)
//   - the "simlink mock" CLI command, which serves the built-in stub station
//     so the client and CLI can be exercised without the real application
//
// A Server accepts any number of connections; each connection performs the
// startup handshake and then processes one command frame at a time, mirroring
// the strictly synchronous client. Handlers receive a Session with typed
// send/receive primitives (the codec in rpc/wire is symmetric, so the same
// encodings serve both directions) plus helpers for the trailing status.
package simserver
