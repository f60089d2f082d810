package raster

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/srwiley/oksvg"

	"github.com/matzehuels/pngexport/pkg/errors"
	"github.com/matzehuels/pngexport/pkg/metrics"
)

// MediaTypeSVG is the only media type the decoder accepts.
const MediaTypeSVG = "image/svg+xml"

// Image is a decoded vector image ready to be drawn.
type Image struct {
	// Width and Height are the intrinsic size in pixels.
	Width, Height float64

	// Skipped names the unsupported elements a lenient decode left out.
	Skipped []string

	mu   sync.Mutex
	icon *oksvg.SvgIcon
}

// Pending is the result of an asynchronous decode.
type Pending struct {
	done chan struct{}
	img  *Image
	err  error
}

// Done is closed once decoding has finished, successfully or not.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until decoding has finished and returns its outcome.
func (p *Pending) Wait() (*Image, error) {
	<-p.done
	return p.img, p.err
}

// Decoder turns SVG data URIs into drawable images.
type Decoder struct {
	// Strict makes unsupported SVG elements a decode failure. When unset
	// they are skipped and reported in [Image.Skipped].
	Strict bool

	logger *log.Logger
}

// NewDecoder returns a strict decoder. A nil logger discards output.
func NewDecoder(logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Decoder{Strict: true, logger: logger}
}

// Decode starts decoding uri on its own goroutine. The returned [Pending]
// completes exactly once; failures carry DECODE_FAILURE.
func (d *Decoder) Decode(uri string) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				p.img, p.err = nil, errors.New(errors.ErrCodeDecodeFailure, "decoder panicked: %v", r)
			}
		}()

		start := time.Now()
		p.img, p.err = d.decodeURI(uri)
		if p.err != nil {
			d.logger.Debug("decode failed", "err", p.err)
			return
		}
		if len(p.img.Skipped) > 0 {
			d.logger.Warn("skipped unsupported svg elements", "elements", strings.Join(p.img.Skipped, ","))
		}
		d.logger.Debug("decoded image", "width", p.img.Width, "height", p.img.Height, "duration", time.Since(start))
	}()
	return p
}

func (d *Decoder) decodeURI(uri string) (*Image, error) {
	mediaType, data, err := DecodeDataURI(uri)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read image source")
	}
	if base, _, _ := strings.Cut(mediaType, ";"); strings.TrimSpace(base) != MediaTypeSVG {
		return nil, errors.New(errors.ErrCodeDecodeFailure, "unsupported media type %q", mediaType)
	}
	return DecodeSVG(data, d.Strict)
}

// DecodeSVG synchronously decodes SVG markup. In strict mode any element
// reported by [Unsupported] fails the decode with DECODE_FAILURE.
func DecodeSVG(data []byte, strict bool) (*Image, error) {
	width, height, viewBox, err := rootAttrs(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read svg root")
	}
	w, h, err := metrics.Intrinsic(width, height, viewBox)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "image has no usable size")
	}

	skipped, err := Unsupported(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "parse svg")
	}
	if strict && len(skipped) > 0 {
		return nil, errors.New(errors.ErrCodeDecodeFailure,
			"unsupported svg content: <%s>", strings.Join(skipped, ">, <"))
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "parse svg")
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.X, icon.ViewBox.Y = 0, 0
		icon.ViewBox.W, icon.ViewBox.H = w, h
	}
	return &Image{Width: w, Height: h, Skipped: skipped, icon: icon}, nil
}

// rootAttrs reads the sizing attributes of the document element, which must
// be <svg>.
func rootAttrs(data []byte) (width, height, viewBox string, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", "", "", err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return "", "", "", fmt.Errorf("root element is <%s>, want <svg>", start.Name.Local)
		}
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "width":
				width = a.Value
			case "height":
				height = a.Value
			case "viewBox":
				viewBox = a.Value
			}
		}
		return width, height, viewBox, nil
	}
}
