package export

import (
	stderrors "errors"
	"strconv"

	"github.com/matzehuels/pngexport/pkg/dom"
	"github.com/matzehuels/pngexport/pkg/errors"
	"github.com/matzehuels/pngexport/pkg/raster"
)

// element is a document element owned by a tracker.
type element struct {
	*dom.Element
}

// Release detaches the element from the document.
func (e element) Release() error {
	return e.Remove()
}

// canvas is a hidden <canvas> element paired with the offscreen surface
// that backs it.
type canvas struct {
	*raster.Surface
	el *dom.Element
}

func (e *Exporter) newCanvas(id string, w, h int) (*canvas, error) {
	body := e.Doc.Body()
	if body == nil {
		return nil, errors.New(errors.ErrCodeInternal, "document has no body")
	}
	s, err := raster.NewSurface(w, h)
	if err != nil {
		return nil, err
	}

	el := e.Doc.CreateElement("canvas")
	el.SetAttr("id", id)
	el.SetAttr("width", strconv.Itoa(w))
	el.SetAttr("height", strconv.Itoa(h))
	el.SetStyle("display", "none")
	body.AppendChild(el)
	return &canvas{Surface: s, el: el}, nil
}

// Release drops the pixel buffer and detaches the element.
func (c *canvas) Release() error {
	return stderrors.Join(c.Surface.Release(), c.el.Remove())
}
