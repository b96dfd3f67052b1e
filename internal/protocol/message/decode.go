package message

import (
	"bytes"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/danmuck/hyperionctl/internal/protocol/hyperionnet"
)

// Field slots from hyperion_request.fbs.
const (
	slotRequestCommandType flatbuffers.VOffsetT = 4
	slotRequestCommand     flatbuffers.VOffsetT = 6

	slotRegisterOrigin   flatbuffers.VOffsetT = 4
	slotRegisterPriority flatbuffers.VOffsetT = 6

	slotImageDataType flatbuffers.VOffsetT = 4
	slotImageData     flatbuffers.VOffsetT = 6
	slotImageDuration flatbuffers.VOffsetT = 8

	slotRawImageData   flatbuffers.VOffsetT = 4
	slotRawImageWidth  flatbuffers.VOffsetT = 6
	slotRawImageHeight flatbuffers.VOffsetT = 8

	slotClearPriority flatbuffers.VOffsetT = 4

	slotColorData     flatbuffers.VOffsetT = 4
	slotColorDuration flatbuffers.VOffsetT = 6
)

// DecodeRequest parses an unframed request buffer back into its variant.
// Byte slices in the result are copies and do not alias payload.
func DecodeRequest(payload []byte) (req Request, err error) {
	defer recoverMalformed(&err)

	v := verifier{buf: payload}
	pos, err := v.root()
	if err != nil {
		return nil, err
	}
	root := &hyperionnet.Request{}
	root.Init(payload, pos)
	if err := v.scalar(root.Table(), slotRequestCommandType, 1); err != nil {
		return nil, err
	}
	cmdPos, ok, err := v.subtable(root.Table(), slotRequestCommand)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, malformed("request: missing command")
	}

	switch root.CommandType() {
	case hyperionnet.CommandRegister:
		return decodeRegister(v, cmdPos)
	case hyperionnet.CommandImage:
		return decodeImage(v, cmdPos)
	case hyperionnet.CommandClear:
		c := &hyperionnet.Clear{}
		c.Init(payload, cmdPos)
		if err := v.scalar(c.Table(), slotClearPriority, 4); err != nil {
			return nil, err
		}
		return Clear{Priority: c.Priority()}, nil
	case hyperionnet.CommandColor:
		c := &hyperionnet.Color{}
		c.Init(payload, cmdPos)
		if err := v.scalar(c.Table(), slotColorData, 4); err != nil {
			return nil, err
		}
		if err := v.scalar(c.Table(), slotColorDuration, 4); err != nil {
			return nil, err
		}
		return Color{ARGB: c.Data(), Duration: c.Duration()}, nil
	default:
		return nil, malformed("request: unknown command type %s", root.CommandType())
	}
}

func decodeRegister(v verifier, pos flatbuffers.UOffsetT) (Request, error) {
	r := &hyperionnet.Register{}
	r.Init(v.buf, pos)
	ok, err := v.vector(r.Table(), slotRegisterOrigin, 1)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, malformed("register: missing origin")
	}
	if err := v.scalar(r.Table(), slotRegisterPriority, 4); err != nil {
		return nil, err
	}
	return Register{Origin: string(r.Origin()), Priority: r.Priority()}, nil
}

func decodeImage(v verifier, pos flatbuffers.UOffsetT) (Request, error) {
	img := &hyperionnet.Image{}
	img.Init(v.buf, pos)
	if err := v.scalar(img.Table(), slotImageDataType, 1); err != nil {
		return nil, err
	}
	if err := v.scalar(img.Table(), slotImageDuration, 4); err != nil {
		return nil, err
	}
	if img.DataType() != hyperionnet.ImageTypeRawImage {
		return nil, malformed("image: unknown data type %s", img.DataType())
	}
	dataPos, ok, err := v.subtable(img.Table(), slotImageData)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, malformed("image: missing data")
	}

	raw := &hyperionnet.RawImage{}
	raw.Init(v.buf, dataPos)
	if _, err := v.vector(raw.Table(), slotRawImageData, 1); err != nil {
		return nil, err
	}
	if err := v.scalar(raw.Table(), slotRawImageWidth, 4); err != nil {
		return nil, err
	}
	if err := v.scalar(raw.Table(), slotRawImageHeight, 4); err != nil {
		return nil, err
	}
	return Image{
		Data: RawImage{
			Data:   bytes.Clone(raw.DataBytes()),
			Width:  raw.Width(),
			Height: raw.Height(),
		},
		Duration: img.Duration(),
	}, nil
}
