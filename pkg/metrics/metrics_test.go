package metrics

import (
	"math"
	"testing"

	"github.com/matzehuels/pngexport/pkg/errors"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= eps*math.Max(1, math.Abs(b))
}

func TestResolveWidthOnly(t *testing.T) {
	sizes := [][2]float64{{200, 100}, {640, 480}, {13, 7}, {0.5, 3}, {1920, 1}}
	targets := []float64{1, 37, 400, 1024.5}

	for _, s := range sizes {
		for _, tw := range targets {
			m, err := Resolve(s[0], s[1], Options{Width: tw})
			if err != nil {
				t.Fatalf("Resolve(%v, %v, width=%v) error: %v", s[0], s[1], tw, err)
			}
			want := tw / s[0]
			if !approx(m.ScaleX, want) || !approx(m.ScaleY, want) {
				t.Errorf("Resolve(%v, width=%v) scale = (%v, %v), want (%v, %v)", s, tw, m.ScaleX, m.ScaleY, want, want)
			}
			if !approx(m.CanvasWidth, tw) {
				t.Errorf("CanvasWidth = %v, want %v", m.CanvasWidth, tw)
			}
			if !approx(m.CanvasHeight, s[1]*want) {
				t.Errorf("CanvasHeight = %v, want %v", m.CanvasHeight, s[1]*want)
			}
		}
	}
}

func TestResolveHeightOnly(t *testing.T) {
	m, err := Resolve(200, 100, Options{Height: 50})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if m.ScaleX != 0.5 || m.ScaleY != 0.5 {
		t.Errorf("scale = (%v, %v), want (0.5, 0.5)", m.ScaleX, m.ScaleY)
	}
	if m.CanvasWidth != 100 || m.CanvasHeight != 50 {
		t.Errorf("canvas = (%v, %v), want (100, 50)", m.CanvasWidth, m.CanvasHeight)
	}
}

func TestResolveBoth(t *testing.T) {
	tests := []struct {
		w0, h0, tw, th float64
	}{
		{200, 100, 400, 400},
		{200, 100, 100, 100},
		{3, 7, 11, 13},
	}

	for _, tt := range tests {
		m, err := Resolve(tt.w0, tt.h0, Options{Width: tt.tw, Height: tt.th})
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if !approx(m.ScaleX, tt.tw/tt.w0) || !approx(m.ScaleY, tt.th/tt.h0) {
			t.Errorf("scale = (%v, %v), want (%v, %v)", m.ScaleX, m.ScaleY, tt.tw/tt.w0, tt.th/tt.h0)
		}
		if m.CanvasWidth != tt.tw || m.CanvasHeight != tt.th {
			t.Errorf("canvas = (%v, %v), want (%v, %v)", m.CanvasWidth, m.CanvasHeight, tt.tw, tt.th)
		}
	}
}

func TestResolveNeither(t *testing.T) {
	m, err := Resolve(123.5, 45, Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := Metrics{CanvasWidth: 123.5, CanvasHeight: 45, ScaleX: 1, ScaleY: 1}
	if m != want {
		t.Errorf("Resolve() = %+v, want %+v", m, want)
	}
	if !m.Uniform() {
		t.Error("Uniform() = false, want true")
	}
}

func TestResolveInvalid(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		opts Options
	}{
		{"zero width", 0, 100, Options{}},
		{"zero height", 100, 0, Options{}},
		{"negative width", -1, 100, Options{}},
		{"NaN width", math.NaN(), 100, Options{}},
		{"infinite height", 100, math.Inf(1), Options{}},
		{"negative target", 100, 100, Options{Width: -10}},
		{"NaN target", 100, 100, Options{Height: math.NaN()}},
		{"infinite target", 100, 100, Options{Width: math.Inf(1)}},
		{"overflow", 1e-300, 1, Options{Width: 1e300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.w, tt.h, tt.opts)
			if !errors.Is(err, errors.ErrCodeInvalidDimensions) {
				t.Errorf("Resolve() error = %v, want %s", err, errors.ErrCodeInvalidDimensions)
			}
		})
	}
}

func TestPixelSize(t *testing.T) {
	m := Metrics{CanvasWidth: 400, CanvasHeight: 199.6}
	w, h := m.PixelSize()
	if w != 400 || h != 200 {
		t.Errorf("PixelSize() = (%d, %d), want (400, 200)", w, h)
	}

	w, _ = Metrics{CanvasWidth: 1e30, CanvasHeight: 1}.PixelSize()
	if w != math.MaxInt32 {
		t.Errorf("PixelSize() width = %d, want saturation at %d", w, math.MaxInt32)
	}
}

func TestOptionsIsZero(t *testing.T) {
	if !(Options{}).IsZero() {
		t.Error("Options{}.IsZero() = false, want true")
	}
	if (Options{Height: 1}).IsZero() {
		t.Error("Options{Height: 1}.IsZero() = true, want false")
	}
}
