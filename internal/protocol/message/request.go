package message

import (
	"fmt"
	"strings"

	"github.com/danmuck/hyperionctl/internal/protocol"
	"github.com/danmuck/hyperionctl/internal/protocol/hyperionnet"
)

const (
	// DurationInfinite keeps a color or image active until cleared.
	DurationInfinite int32 = -1
	// PriorityAll clears every priority when used with Clear.
	PriorityAll int32 = -1
	// BytesPerPixel is fixed by the packed RGB pixel layout.
	BytesPerPixel = 3
)

// Request is one of Register, Image, Clear or Color.
type Request interface {
	Command() hyperionnet.Command
	Validate() error
	isRequest()
}

// ImagePayload is the image union. RawImage is the only member.
type ImagePayload interface {
	ImageType() hyperionnet.ImageType
	Validate() error
	isImagePayload()
}

// Register announces the origin and priority of this client.
type Register struct {
	Origin   string
	Priority int32
}

// RawImage is packed RGB, row-major, without row padding.
type RawImage struct {
	Data   []byte
	Width  int32
	Height int32
}

// Image shows Data for Duration milliseconds.
type Image struct {
	Data     ImagePayload
	Duration int32
}

// Clear releases Priority on the server.
type Clear struct {
	Priority int32
}

// Color sets a solid 0x00RRGGBB color for Duration milliseconds.
type Color struct {
	ARGB     int32
	Duration int32
}

// NewColor packs r, g and b into a Color request.
func NewColor(r, g, b uint8, duration int32) Color {
	return Color{
		ARGB:     int32(r)<<16 | int32(g)<<8 | int32(b),
		Duration: duration,
	}
}

// RGB unpacks the color channels. Alpha is ignored.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c.ARGB >> 16), uint8(c.ARGB >> 8), uint8(c.ARGB)
}

func (Register) Command() hyperionnet.Command { return hyperionnet.CommandRegister }
func (Image) Command() hyperionnet.Command    { return hyperionnet.CommandImage }
func (Clear) Command() hyperionnet.Command    { return hyperionnet.CommandClear }
func (Color) Command() hyperionnet.Command    { return hyperionnet.CommandColor }

func (RawImage) ImageType() hyperionnet.ImageType { return hyperionnet.ImageTypeRawImage }

func (Register) isRequest() {}
func (Image) isRequest()    {}
func (Clear) isRequest()    {}
func (Color) isRequest()    {}

func (RawImage) isImagePayload() {}

func (r Register) Validate() error {
	if strings.TrimSpace(r.Origin) == "" {
		return fmt.Errorf("%w: register: missing origin", protocol.ErrValidation)
	}
	return nil
}

func (r RawImage) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: raw image: invalid size %dx%d", protocol.ErrValidation, r.Width, r.Height)
	}
	want := int64(r.Width) * int64(r.Height) * BytesPerPixel
	if int64(len(r.Data)) != want {
		return fmt.Errorf("%w: raw image: got %d bytes for %dx%d, want %d",
			protocol.ErrValidation, len(r.Data), r.Width, r.Height, want)
	}
	return nil
}

func (i Image) Validate() error {
	if i.Data == nil {
		return fmt.Errorf("%w: image: missing data", protocol.ErrValidation)
	}
	return i.Data.Validate()
}

func (Clear) Validate() error { return nil }

func (Color) Validate() error { return nil }
