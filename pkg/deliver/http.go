package deliver

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"sync"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// HTTP answers a single HTTP request with the payload as an attachment.
// It accepts at most one delivery.
type HTTP struct {
	w    http.ResponseWriter
	mu   sync.Mutex
	sent bool
}

// NewHTTP returns a deliverer writing to w.
func NewHTTP(w http.ResponseWriter) *HTTP {
	return &HTTP{w: w}
}

// Sent reports whether a payload has been written.
func (h *HTTP) Sent() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sent
}

// Deliver writes the payload with a Content-Disposition attachment header.
func (h *HTTP) Deliver(ctx context.Context, p Payload) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sent {
		return errors.New(errors.ErrCodeDeliveryFailure, "response already sent")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "deliver %s", p.Filename)
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": p.Filename})
	if disposition == "" {
		return errors.New(errors.ErrCodeDeliveryFailure, "cannot encode file name %q", p.Filename)
	}
	mediaType := p.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	hdr := h.w.Header()
	hdr.Set("Content-Type", mediaType)
	hdr.Set("Content-Disposition", disposition)
	hdr.Set("Content-Length", strconv.Itoa(len(p.Data)))
	h.w.WriteHeader(http.StatusOK)
	h.sent = true

	if _, err := h.w.Write(p.Data); err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "write response")
	}
	return nil
}
