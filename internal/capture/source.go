// Package capture produces frames for the lighting server and streams them
// at a fixed rate.
package capture

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/danmuck/hyperionctl/internal/pixel"
	"github.com/danmuck/hyperionctl/internal/protocol"
)

// Source yields packed RGB frames of a fixed size.
type Source interface {
	// Frame returns the next frame. Callers must not modify it.
	Frame(ctx context.Context) ([]byte, error)
	Size() (width, height int)
}

type staticSource struct {
	width, height int
	pixels        []byte
}

func (s *staticSource) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.pixels, nil
}

func (s *staticSource) Size() (int, int) {
	return s.width, s.height
}

// NewImageSource decodes the image at path once and scales it to
// width x height. PNG, JPEG, GIF, BMP and WebP are supported.
func NewImageSource(path string, width, height int) (Source, error) {
	img, format, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	pixels, err := pixel.FromImage(img, width, height)
	if err != nil {
		return nil, fmt.Errorf("capture: %s image %s: %w", format, path, err)
	}
	return &staticSource{width: width, height: height, pixels: pixels}, nil
}

// DecodeFile decodes the image at path and reports its format.
func DecodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("capture: open image: %w", err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: capture: decode %s: %w", protocol.ErrValidation, path, err)
	}
	return img, format, nil
}

// NewSolidSource fills every pixel with c.
func NewSolidSource(width, height int, c color.RGBA) (Source, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: capture: invalid size %dx%d", protocol.ErrValidation, width, height)
	}
	pixels := make([]byte, width*height*pixel.BytesPerPixel)
	for i := 0; i < len(pixels); i += pixel.BytesPerPixel {
		pixels[i] = c.R
		pixels[i+1] = c.G
		pixels[i+2] = c.B
	}
	return &staticSource{width: width, height: height, pixels: pixels}, nil
}

// PatternSource is a test pattern: a hue gradient across the width that
// shifts by Step degrees every frame.
type PatternSource struct {
	width, height int
	// Step is the hue shift per frame in degrees.
	Step float64

	mu    sync.Mutex
	phase float64
}

func NewPatternSource(width, height int) (*PatternSource, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: capture: invalid size %dx%d", protocol.ErrValidation, width, height)
	}
	return &PatternSource{width: width, height: height, Step: 6}, nil
}

func (p *PatternSource) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	phase := p.phase
	p.phase += p.Step
	if p.phase >= 360 {
		p.phase -= 360
	}
	p.mu.Unlock()

	row := make([]byte, p.width*pixel.BytesPerPixel)
	for x := 0; x < p.width; x++ {
		r, g, b := hueToRGB(phase + 360*float64(x)/float64(p.width))
		i := x * pixel.BytesPerPixel
		row[i], row[i+1], row[i+2] = r, g, b
	}
	out := make([]byte, 0, len(row)*p.height)
	for y := 0; y < p.height; y++ {
		out = append(out, row...)
	}
	return out, nil
}

func (p *PatternSource) Size() (int, int) {
	return p.width, p.height
}

// hueToRGB converts a fully saturated, full value hue in degrees.
func hueToRGB(h float64) (r, g, b byte) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	x := 1 - math.Abs(math.Mod(h/60, 2)-1)
	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = 1, x, 0
	case h < 120:
		rf, gf, bf = x, 1, 0
	case h < 180:
		rf, gf, bf = 0, 1, x
	case h < 240:
		rf, gf, bf = 0, x, 1
	case h < 300:
		rf, gf, bf = x, 0, 1
	default:
		rf, gf, bf = 1, 0, x
	}
	return byte(rf*255 + 0.5), byte(gf*255 + 0.5), byte(bf*255 + 0.5)
}

