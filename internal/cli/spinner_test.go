package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Exporting #chart...")
	s.out = &buf
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	s.Stop()

	if !strings.Contains(buf.String(), "Exporting #chart...") {
		t.Errorf("spinner output %q should contain the message", buf.String())
	}
}

func TestSpinnerContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
		want bool
	}{
		{"cancelled", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}, true},
		{"timed out", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}, true},
		{"running", func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerWithContext(ctx, "Rendering...")
			s.out = &bytes.Buffer{}
			s.Start()
			time.Sleep(60 * time.Millisecond)
			if got := s.Cancelled(); got != tt.want {
				t.Errorf("Cancelled() = %v, want %v", got, tt.want)
			}
			s.Stop()
		})
	}
}
