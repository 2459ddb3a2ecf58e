// Package common provides the shared vocabulary of the RPC layer: the
// protocol status codes and their error taxonomy, opaque remote object
// handles, the client configuration struct and the logger factory.
//
// The package is imported by every other rpc package and therefore contains
// no protocol logic itself, only definitions:
//
//   - StatusCode / RemoteError: classification of the trailing status integer
//     every command frame ends with. Callers branch on the classification
//     with errors.As / errors.Is instead of inspecting raw integers.
//   - Handle: an opaque {identifier, type} reference to an object owned by
//     the remote application. Handles are only ever echoed back to the remote
//     side, never dereferenced locally.
//   - ClientConfig: endpoint, timeout and auto-launch settings.
//   - Logger factory: named per-component loggers with a uniform format.
package common
