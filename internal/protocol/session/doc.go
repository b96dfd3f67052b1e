// Package session owns the TCP connection to a Hyperion flatbuffer server.
//
// Ownership boundary:
// - connection lifecycle (dial, timeouts, close)
// - one framed request/reply exchange at a time
// - reconnect backoff primitives for callers that retry
package session
