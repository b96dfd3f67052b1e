// Package hyperionnet holds the flatbuffer bindings for the Hyperion
// flatbuffer server schema.
package hyperionnet

//go:generate flatc --go --go-namespace hyperionnet -o .. hyperion_request.fbs hyperion_reply.fbs
