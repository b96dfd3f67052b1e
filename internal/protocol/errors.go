package protocol

import "errors"

// Error kinds surfaced by the client. Concrete errors wrap exactly one of
// these so callers can branch with errors.Is.
var (
	// ErrValidation marks request data rejected before any I/O.
	ErrValidation = errors.New("protocol: invalid request")
	// ErrConnection marks a failed dial. The caller may retry.
	ErrConnection = errors.New("protocol: connection failed")
	// ErrTransport marks a send/receive failure. The connection is dropped
	// and the in-flight request is lost.
	ErrTransport = errors.New("protocol: transport failure")
	// ErrProtocol marks bytes that do not parse as a valid message.
	ErrProtocol = errors.New("protocol: malformed message")
)
