package metrics

import (
	"testing"

	"github.com/matzehuels/pngexport/pkg/errors"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"200", 200, false},
		{" 200 ", 200, false},
		{"12.5", 12.5, false},
		{"200px", 200, false},
		{"72pt", 96, false},
		{"1in", 96, false},
		{"2.54cm", 96, false},
		{"25.4mm", 96, false},
		{"1pc", 16, false},
		{"1e2", 100, false},
		{"100PX", 100, false},

		{"", 0, true},
		{"50%", 0, true},
		{"2em", 0, true},
		{"wide", 0, true},
		{"px", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLength(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLength(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidDimensions) {
					t.Errorf("ParseLength(%q) code = %v", tt.input, errors.GetCode(err))
				}
				return
			}
			if !approx(got, tt.want) {
				t.Errorf("ParseLength(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIntrinsic(t *testing.T) {
	tests := []struct {
		name                   string
		width, height, viewBox string
		wantW, wantH           float64
		wantErr                bool
	}{
		{"attributes", "200", "100", "", 200, 100, false},
		{"attributes win over viewBox", "200", "100", "0 0 50 50", 200, 100, false},
		{"viewBox fallback", "", "", "0 0 640 480", 640, 480, false},
		{"viewBox with commas", "", "", "0,0,64,48", 64, 48, false},
		{"mixed", "300", "", "0 0 10 20", 300, 20, false},
		{"nothing", "", "", "", 0, 0, true},
		{"bad width", "auto", "100", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := Intrinsic(tt.width, tt.height, tt.viewBox)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Intrinsic() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (w != tt.wantW || h != tt.wantH) {
				t.Errorf("Intrinsic() = (%v, %v), want (%v, %v)", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
