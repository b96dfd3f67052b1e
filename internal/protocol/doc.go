// Package protocol owns the Hyperion flatbuffer wire contract.
//
// Ownership boundary:
// - error kinds shared by every protocol layer
// - hyperionnet: schema bindings for requests and replies
// - message: request encoding and reply decoding
// - frame: length-prefixed framing
// - session: one TCP connection and its request/reply exchange
package protocol
