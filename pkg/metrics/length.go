package metrics

import (
	"strconv"
	"strings"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// Pixels per unit for the CSS absolute length units at 96 dpi.
var unitScale = map[string]float64{
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
}

// ParseLength parses an SVG length attribute into pixels.
// Relative units (%, em, ex) cannot be resolved without layout and are
// rejected with INVALID_DIMENSIONS.
func ParseLength(s string) (float64, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, errors.New(errors.ErrCodeInvalidDimensions, "length is empty")
	}

	num, scale := v, 1.0
	lower := strings.ToLower(v)
	for unit, px := range unitScale {
		if strings.HasSuffix(lower, unit) {
			num, scale = v[:len(v)-len(unit)], px
			break
		}
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidDimensions, err, "invalid length %q", s)
	}
	return f * scale, nil
}

// Intrinsic resolves the intrinsic size of a graphic from its width, height
// and viewBox attributes. A missing width or height falls back to the
// corresponding viewBox extent.
func Intrinsic(width, height, viewBox string) (float64, float64, error) {
	var vbW, vbH float64
	if viewBox != "" {
		fields := strings.FieldsFunc(viewBox, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
		if len(fields) == 4 {
			vbW, _ = strconv.ParseFloat(fields[2], 64)
			vbH, _ = strconv.ParseFloat(fields[3], 64)
		}
	}

	w, err := lengthOr(width, vbW, "width")
	if err != nil {
		return 0, 0, err
	}
	h, err := lengthOr(height, vbH, "height")
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func lengthOr(attr string, fallback float64, name string) (float64, error) {
	if strings.TrimSpace(attr) != "" {
		return ParseLength(attr)
	}
	if fallback > 0 {
		return fallback, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidDimensions, "graphic declares no %s", name)
}
