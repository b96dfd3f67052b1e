package message

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/danmuck/hyperionctl/internal/protocol"
	"github.com/danmuck/hyperionctl/internal/protocol/hyperionnet"
)

// builderOverhead covers tables, vtables and alignment around the payload.
const builderOverhead = 128

// Encode serializes req into one finished flatbuffer with no framing.
// Every call uses its own builder, so Encode is safe for concurrent use.
func Encode(req Request) ([]byte, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := flatbuffers.NewBuilder(builderOverhead + payloadSize(req))
	var command flatbuffers.UOffsetT
	switch r := req.(type) {
	case Register:
		command = buildRegister(b, r)
	case Image:
		command = buildImage(b, r)
	case Clear:
		hyperionnet.ClearStart(b)
		hyperionnet.ClearAddPriority(b, r.Priority)
		command = hyperionnet.ClearEnd(b)
	case Color:
		hyperionnet.ColorStart(b)
		hyperionnet.ColorAddData(b, r.ARGB)
		hyperionnet.ColorAddDuration(b, r.Duration)
		command = hyperionnet.ColorEnd(b)
	}

	hyperionnet.RequestStart(b)
	hyperionnet.RequestAddCommandType(b, req.Command())
	hyperionnet.RequestAddCommand(b, command)
	b.Finish(hyperionnet.RequestEnd(b))
	return b.FinishedBytes(), nil
}

func buildRegister(b *flatbuffers.Builder, r Register) flatbuffers.UOffsetT {
	origin := b.CreateString(r.Origin)
	hyperionnet.RegisterStart(b)
	hyperionnet.RegisterAddOrigin(b, origin)
	hyperionnet.RegisterAddPriority(b, r.Priority)
	return hyperionnet.RegisterEnd(b)
}

func buildImage(b *flatbuffers.Builder, img Image) flatbuffers.UOffsetT {
	raw := img.Data.(RawImage)
	data := b.CreateByteVector(raw.Data)
	hyperionnet.RawImageStart(b)
	hyperionnet.RawImageAddData(b, data)
	hyperionnet.RawImageAddWidth(b, raw.Width)
	hyperionnet.RawImageAddHeight(b, raw.Height)
	rawOffset := hyperionnet.RawImageEnd(b)

	hyperionnet.ImageStart(b)
	hyperionnet.ImageAddDataType(b, raw.ImageType())
	hyperionnet.ImageAddData(b, rawOffset)
	hyperionnet.ImageAddDuration(b, img.Duration)
	return hyperionnet.ImageEnd(b)
}

// normalize turns pointer variants into values so the encoder only deals
// with the closed set of value types.
func normalize(req Request) (Request, error) {
	switch r := req.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil request", protocol.ErrValidation)
	case Register, Clear, Color:
		return r, nil
	case Image:
		return normalizeImage(r)
	case *Register:
		if r != nil {
			return *r, nil
		}
	case *Image:
		if r != nil {
			return normalizeImage(*r)
		}
	case *Clear:
		if r != nil {
			return *r, nil
		}
	case *Color:
		if r != nil {
			return *r, nil
		}
	default:
		return nil, fmt.Errorf("%w: unsupported request %T", protocol.ErrValidation, req)
	}
	return nil, fmt.Errorf("%w: nil %T", protocol.ErrValidation, req)
}

func normalizeImage(img Image) (Request, error) {
	switch d := img.Data.(type) {
	case RawImage:
	case *RawImage:
		if d == nil {
			return nil, fmt.Errorf("%w: image: missing data", protocol.ErrValidation)
		}
		img.Data = *d
	case nil:
		return nil, fmt.Errorf("%w: image: missing data", protocol.ErrValidation)
	default:
		return nil, fmt.Errorf("%w: image: unsupported payload %T", protocol.ErrValidation, d)
	}
	return img, nil
}

func payloadSize(req Request) int {
	switch r := req.(type) {
	case Register:
		return len(r.Origin)
	case Image:
		return len(r.Data.(RawImage).Data)
	}
	return 0
}
