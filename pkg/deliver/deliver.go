// Package deliver hands finished exports to the user.
//
// A [Deliverer] receives one [Payload] per successful export. Implementations
// cover the ways pngexport can surface a file:
//
//   - [Dir]: save into a download directory
//   - [HTTP]: answer an HTTP request with an attachment
//   - [Writer]: copy the bytes to any io.Writer (e.g. stdout)
//   - [Func]: adapt a plain function
//
// Failures are reported with DELIVERY_FAILURE.
package deliver

import (
	"context"
	"io"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// Payload is a finished file.
type Payload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// Deliverer receives finished exports.
type Deliverer interface {
	Deliver(ctx context.Context, p Payload) error
}

// Func adapts a function to [Deliverer].
type Func func(ctx context.Context, p Payload) error

// Deliver calls f.
func (f Func) Deliver(ctx context.Context, p Payload) error { return f(ctx, p) }

// Writer copies payloads to W.
type Writer struct {
	W io.Writer
}

// Deliver writes the payload bytes.
func (w Writer) Deliver(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "deliver %s", p.Filename)
	}
	if _, err := w.W.Write(p.Data); err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "write %s", p.Filename)
	}
	return nil
}

var (
	_ Deliverer = Func(nil)
	_ Deliverer = Writer{}
	_ Deliverer = (*Dir)(nil)
	_ Deliverer = (*HTTP)(nil)
)
