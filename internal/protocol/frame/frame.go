package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/danmuck/hyperionctl/internal/protocol"
)

// HeaderLen is the size of the big-endian length prefix.
const HeaderLen = 4

var (
	ErrShortHeader      = fmt.Errorf("%w: frame: short length header", protocol.ErrTransport)
	ErrTruncatedPayload = fmt.Errorf("%w: frame: truncated payload", protocol.ErrTransport)
	ErrPayloadTooLarge  = fmt.Errorf("%w: frame: payload too large", protocol.ErrTransport)
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 64 * 1024 * 1024,
	}
}

func (l Limits) max() uint64 {
	if l.MaxPayloadBytes == 0 || l.MaxPayloadBytes > math.MaxUint32 {
		return math.MaxUint32
	}
	return l.MaxPayloadBytes
}

// Encode prefixes payload with its length as a 4-byte big-endian integer.
func Encode(payload []byte, limits Limits) ([]byte, error) {
	if uint64(len(payload)) > limits.max() {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	buf := make([]byte, HeaderLen+len(payload))
	binary.BigEndian.PutUint32(buf[:HeaderLen], uint32(len(payload)))
	copy(buf[HeaderLen:], payload)
	return buf, nil
}

// WriteFrame writes header and payload with a single Write call.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	buf, err := Encode(payload, limits)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: frame: write: %w", protocol.ErrTransport, err)
	}
	return nil
}

// ReadFrame reads one length-prefixed payload, looping over short reads.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var header [HeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrShortHeader
		}
		return nil, fmt.Errorf("%w: frame: read header: %w", protocol.ErrTransport, err)
	}

	n := binary.BigEndian.Uint32(header[:])
	if uint64(n) > limits.max() {
		return nil, fmt.Errorf("%w: announced %d bytes", ErrPayloadTooLarge, n)
	}

	payload := make([]byte, n)
	if n == 0 {
		return payload, nil
	}
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: announced %d bytes", ErrTruncatedPayload, n)
		}
		return nil, fmt.Errorf("%w: frame: read payload: %w", protocol.ErrTransport, err)
	}
	return payload, nil
}
