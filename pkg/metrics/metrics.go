// Package metrics resolves the raster canvas for an export.
//
// A source graphic declares an intrinsic size (its width and height
// attributes). Callers may ask for a target width, a target height, both, or
// neither. [Resolve] combines the two into a [Metrics] value: the canvas size
// in pixels and the per-axis scale factors that map source coordinates onto
// that canvas.
//
//	m, err := metrics.Resolve(200, 100, metrics.Options{Width: 400})
//	// m.CanvasWidth == 400, m.CanvasHeight == 200, m.ScaleX == m.ScaleY == 2
//
// Giving only one target dimension scales uniformly. Giving both scales each
// axis independently, so the aspect ratio may change.
package metrics

import (
	"math"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// Options holds the caller-requested target dimensions.
// A zero field means "not set".
type Options struct {
	Width  float64 `json:"width,omitempty" toml:"width"`
	Height float64 `json:"height,omitempty" toml:"height"`
}

// IsZero reports whether no target dimension is set.
func (o Options) IsZero() bool {
	return o.Width == 0 && o.Height == 0
}

// Metrics describes the raster canvas and the scale applied to the source.
type Metrics struct {
	CanvasWidth  float64 `json:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height"`
	ScaleX       float64 `json:"scale_x"`
	ScaleY       float64 `json:"scale_y"`
}

// PixelSize returns the canvas size rounded to whole pixels.
func (m Metrics) PixelSize() (int, int) {
	return pixels(m.CanvasWidth), pixels(m.CanvasHeight)
}

// pixels rounds v to whole pixels, saturating at math.MaxInt32.
func pixels(v float64) int {
	return int(math.Min(math.Round(v), math.MaxInt32))
}

// Uniform reports whether both axes use the same scale factor.
func (m Metrics) Uniform() bool {
	return m.ScaleX == m.ScaleY
}

// Resolve computes the canvas metrics for a graphic of intrinsic size
// (w, h) under opts. It fails with INVALID_DIMENSIONS when either intrinsic
// dimension is not a positive finite number, when a set target is negative
// or not finite, or when the result overflows.
func Resolve(w, h float64, opts Options) (Metrics, error) {
	if !positive(w) || !positive(h) {
		return Metrics{}, errors.New(errors.ErrCodeInvalidDimensions,
			"intrinsic size %vx%v must be positive and finite", w, h)
	}
	if err := validateTarget("width", opts.Width); err != nil {
		return Metrics{}, err
	}
	if err := validateTarget("height", opts.Height); err != nil {
		return Metrics{}, err
	}

	m := Metrics{CanvasWidth: w, CanvasHeight: h, ScaleX: 1, ScaleY: 1}
	switch {
	case opts.Width > 0 && opts.Height > 0:
		m.CanvasWidth = opts.Width
		m.ScaleX = opts.Width / w
		m.CanvasHeight = opts.Height
		m.ScaleY = opts.Height / h
	case opts.Width > 0:
		m.CanvasWidth = opts.Width
		m.ScaleX = opts.Width / w
		m.ScaleY = m.ScaleX
		m.CanvasHeight = h * m.ScaleX
	case opts.Height > 0:
		m.CanvasHeight = opts.Height
		m.ScaleY = opts.Height / h
		m.ScaleX = m.ScaleY
		m.CanvasWidth = w * m.ScaleY
	}

	if !positive(m.ScaleX) || !positive(m.ScaleY) || !positive(m.CanvasWidth) || !positive(m.CanvasHeight) {
		return Metrics{}, errors.New(errors.ErrCodeInvalidDimensions,
			"resolved canvas %vx%v (scale %v, %v) is out of range",
			m.CanvasWidth, m.CanvasHeight, m.ScaleX, m.ScaleY)
	}
	return m, nil
}

func validateTarget(name string, v float64) error {
	if v == 0 {
		return nil
	}
	if !positive(v) {
		return errors.New(errors.ErrCodeInvalidDimensions, "target %s %v must be positive and finite", name, v)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
