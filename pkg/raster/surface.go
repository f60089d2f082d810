// Package raster is the offscreen rendering engine used by the exporter.
//
// It provides the pieces a canvas-based export needs:
//
//   - [Surface]: an RGBA pixel buffer of a fixed size
//   - [Context]: a 2D drawing context with a current transform
//   - [Decoder]: asynchronous decoding of an SVG data URI into an [Image]
//   - [EncodePNG]: PNG encoding of a surface
//
// Vector content is rasterized with oksvg and rasterx; no external tools are
// required.
//
//	s, _ := raster.NewSurface(400, 200)
//	ctx := s.Context()
//	ctx.Scale(2, 2)
//
//	img, err := raster.NewDecoder(logger).Decode(uri).Wait()
//	if err != nil { ... }
//	ctx.DrawImage(img, 0, 0)
//	data, err := raster.EncodePNG(s)
package raster

import (
	"image"

	"github.com/srwiley/rasterx"

	"github.com/matzehuels/pngexport/pkg/errors"
)

const (
	// MaxDimension bounds both sides of a surface in pixels.
	MaxDimension = 1 << 15

	// MaxPixels bounds the area of a surface: 8192×8192, a 256 MiB RGBA
	// buffer.
	MaxPixels = 1 << 26
)

// Surface is an offscreen RGBA pixel buffer.
// A zero-sized surface is valid but cannot be encoded.
type Surface struct {
	width, height int
	img           *image.RGBA
	ctx           *Context
}

// CheckSize reports whether a w×h surface may be allocated. Failures carry
// INVALID_DIMENSIONS.
func CheckSize(w, h int) error {
	if w < 0 || h < 0 || w > MaxDimension || h > MaxDimension {
		return errors.New(errors.ErrCodeInvalidDimensions,
			"surface %dx%d outside 0..%d", w, h, MaxDimension)
	}
	if int64(w)*int64(h) > MaxPixels {
		return errors.New(errors.ErrCodeInvalidDimensions,
			"surface %dx%d exceeds %d pixels", w, h, MaxPixels)
	}
	return nil
}

// NewSurface allocates a transparent surface of w×h pixels.
func NewSurface(w, h int) (*Surface, error) {
	if err := CheckSize(w, h); err != nil {
		return nil, err
	}
	s := &Surface{
		width:  w,
		height: h,
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
	}
	s.ctx = &Context{surface: s, matrix: rasterx.Identity}
	return s, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Empty reports whether the surface has no pixels.
func (s *Surface) Empty() bool { return s.width == 0 || s.height == 0 }

// Image returns the backing pixel buffer, or nil after Release.
func (s *Surface) Image() *image.RGBA { return s.img }

// Context returns the surface's drawing context. Every call returns the same
// context, so transforms accumulate like on a canvas.
func (s *Surface) Context() *Context { return s.ctx }

// Release drops the pixel buffer.
func (s *Surface) Release() error {
	s.img = nil
	return nil
}

// Context draws onto a surface through a current transform.
type Context struct {
	surface *Surface
	matrix  rasterx.Matrix2D
}

// Scale multiplies the current transform by a scale of (sx, sy).
func (c *Context) Scale(sx, sy float64) {
	c.matrix = c.matrix.Scale(sx, sy)
}

// Translate multiplies the current transform by a translation.
func (c *Context) Translate(tx, ty float64) {
	c.matrix = c.matrix.Translate(tx, ty)
}

// ResetTransform restores the identity transform.
func (c *Context) ResetTransform() {
	c.matrix = rasterx.Identity
}

// Transform returns the current transform.
func (c *Context) Transform() rasterx.Matrix2D {
	return c.matrix
}

// DrawImage draws img at its intrinsic size with its top-left corner at
// (x, y) in user space. Drawing onto an empty surface is a no-op.
func (c *Context) DrawImage(img *Image, x, y float64) error {
	s := c.surface
	if s.img == nil {
		return errors.New(errors.ErrCodeInternal, "draw on released surface")
	}
	if s.Empty() {
		return nil
	}

	img.mu.Lock()
	defer img.mu.Unlock()
	icon := img.icon
	icon.SetTarget(x, y, img.Width, img.Height)
	icon.Transform = c.matrix.Mult(icon.Transform)

	scanner := rasterx.NewScannerGV(s.width, s.height, s.img, s.img.Bounds())
	icon.Draw(rasterx.NewDasher(s.width, s.height, scanner), 1.0)
	return nil
}
