package message

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/danmuck/hyperionctl/internal/protocol"
)

const (
	sizeUOffset = 4
	sizeSOffset = 4
	sizeVOffset = 2
)

// verifier bounds-checks flatbuffer tables before the generated accessors
// touch them. The accessors index the buffer directly and panic on bad
// offsets.
type verifier struct {
	buf []byte
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{protocol.ErrProtocol}, args...)...)
}

// recoverMalformed converts an accessor panic into ErrProtocol.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = malformed("%v", r)
	}
}

func (v verifier) fits(at, size uint64) bool {
	return at+size <= uint64(len(v.buf))
}

func (v verifier) root() (flatbuffers.UOffsetT, error) {
	if len(v.buf) < sizeUOffset {
		return 0, malformed("buffer too short for root offset: %d bytes", len(v.buf))
	}
	pos := flatbuffers.GetUOffsetT(v.buf)
	if err := v.table(pos); err != nil {
		return 0, err
	}
	return pos, nil
}

func (v verifier) table(pos flatbuffers.UOffsetT) error {
	if !v.fits(uint64(pos), sizeSOffset) {
		return malformed("table at %d out of range", pos)
	}
	vt := int64(pos) - int64(flatbuffers.GetSOffsetT(v.buf[pos:]))
	if vt < 0 || !v.fits(uint64(vt), 2*sizeVOffset) {
		return malformed("vtable of table at %d out of range", pos)
	}
	vtLen := flatbuffers.GetVOffsetT(v.buf[vt:])
	objLen := flatbuffers.GetVOffsetT(v.buf[vt+sizeVOffset:])
	if vtLen < 2*sizeVOffset || vtLen%sizeVOffset != 0 || !v.fits(uint64(vt), uint64(vtLen)) {
		return malformed("vtable of table at %d has invalid length %d", pos, vtLen)
	}
	if objLen < sizeSOffset || !v.fits(uint64(pos), uint64(objLen)) {
		return malformed("table at %d overruns buffer", pos)
	}
	for i := int64(2 * sizeVOffset); i < int64(vtLen); i += sizeVOffset {
		if off := flatbuffers.GetVOffsetT(v.buf[vt+i:]); off != 0 && off >= objLen {
			return malformed("field offset %d outside table at %d", off, pos)
		}
	}
	return nil
}

// scalar checks a fixed-size field of t.
func (v verifier) scalar(t flatbuffers.Table, slot flatbuffers.VOffsetT, size uint64) error {
	o := t.Offset(slot)
	if o == 0 {
		return nil
	}
	if !v.fits(uint64(t.Pos)+uint64(o), size) {
		return malformed("field %d of table at %d out of range", slot, t.Pos)
	}
	return nil
}

// indirect resolves the offset stored in a reference field of t.
func (v verifier) indirect(t flatbuffers.Table, slot flatbuffers.VOffsetT) (flatbuffers.UOffsetT, bool, error) {
	o := t.Offset(slot)
	if o == 0 {
		return 0, false, nil
	}
	at := t.Pos + flatbuffers.UOffsetT(o)
	if !v.fits(uint64(at), sizeUOffset) {
		return 0, false, malformed("field %d of table at %d out of range", slot, t.Pos)
	}
	target := uint64(at) + uint64(flatbuffers.GetUOffsetT(v.buf[at:]))
	if target > uint64(len(v.buf)) {
		return 0, false, malformed("field %d of table at %d points outside buffer", slot, t.Pos)
	}
	return flatbuffers.UOffsetT(target), true, nil
}

// vector checks a string or vector field of t.
func (v verifier) vector(t flatbuffers.Table, slot flatbuffers.VOffsetT, elemSize uint64) (bool, error) {
	start, ok, err := v.indirect(t, slot)
	if err != nil || !ok {
		return ok, err
	}
	if !v.fits(uint64(start), sizeUOffset) {
		return false, malformed("vector length at %d out of range", start)
	}
	n := uint64(flatbuffers.GetUOffsetT(v.buf[start:]))
	if !v.fits(uint64(start)+sizeUOffset, n*elemSize) {
		return false, malformed("vector at %d overruns buffer: %d elements", start, n)
	}
	return true, nil
}

// subtable checks a table or union field of t and returns its position.
func (v verifier) subtable(t flatbuffers.Table, slot flatbuffers.VOffsetT) (flatbuffers.UOffsetT, bool, error) {
	pos, ok, err := v.indirect(t, slot)
	if err != nil || !ok {
		return 0, ok, err
	}
	if err := v.table(pos); err != nil {
		return 0, false, err
	}
	return pos, true, nil
}
