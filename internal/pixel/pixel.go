// Package pixel converts host pixel buffers into the packed RGB layout the
// lighting server expects.
package pixel

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/danmuck/hyperionctl/internal/protocol"
)

const BytesPerPixel = 3

// BGRAToRGB drops the alpha channel of a BGRA buffer and swaps the red and
// blue channels.
func BGRAToRGB(src []byte) ([]byte, error) {
	if len(src)%4 != 0 {
		return nil, fmt.Errorf("%w: pixel: bgra buffer length %d is not a multiple of 4", protocol.ErrValidation, len(src))
	}
	dst := make([]byte, len(src)/4*BytesPerPixel)
	for i, j := 0, 0; i < len(src); i, j = i+4, j+BytesPerPixel {
		dst[j] = src[i+2]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i]
	}
	return dst, nil
}

// RGBAToRGB drops the alpha channel of an RGBA buffer.
func RGBAToRGB(src []byte) ([]byte, error) {
	if len(src)%4 != 0 {
		return nil, fmt.Errorf("%w: pixel: rgba buffer length %d is not a multiple of 4", protocol.ErrValidation, len(src))
	}
	dst := make([]byte, len(src)/4*BytesPerPixel)
	for i, j := 0, 0; i < len(src); i, j = i+4, j+BytesPerPixel {
		copy(dst[j:j+BytesPerPixel], src[i:i+3])
	}
	return dst, nil
}

// FromImage scales img to width x height and packs it as RGB. Alpha is
// dropped without blending.
func FromImage(img image.Image, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: pixel: invalid size %dx%d", protocol.ErrValidation, width, height)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: pixel: empty source image", protocol.ErrValidation)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	return RGBAToRGB(dst.Pix)
}

// Validate checks that buf holds exactly width x height RGB pixels.
func Validate(buf []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: pixel: invalid size %dx%d", protocol.ErrValidation, width, height)
	}
	if want := width * height * BytesPerPixel; len(buf) != want {
		return fmt.Errorf("%w: pixel: have %d bytes, want %d for %dx%d", protocol.ErrValidation, len(buf), want, width, height)
	}
	return nil
}
