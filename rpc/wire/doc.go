// Package wire implements the codec for the protocol's primitive types
// against a transport stream.
//
// Every value crossing the wire is one of a small set of encodings, all
// big-endian:
//
//   - integer: 4-byte signed, no delimiter
//   - double array: 4-byte count followed by count 8-byte IEEE doubles; the
//     receiver rejects counts outside [0, 50] as a protocol fault
//   - pose: exactly 16 doubles, no count, column-major (column j, row i at
//     wire index 4j+i)
//   - handle: outbound as the 8-byte identifier only (0 when absent);
//     inbound as the identifier followed by a type-tag integer
//   - matrix: row count, column count, then rows*cols doubles column-major,
//     received in chunks to tolerate partial socket deliveries
//   - text line: UTF-8, single linefeed delimiter, terminator trimmed
//
// The codec is stateless: a Stream is a value binding a transport connection
// to the effective timeout of the current call, so concurrent calls on
// different connections share nothing.
package wire
