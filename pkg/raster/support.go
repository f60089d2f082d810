package raster

import (
	"bytes"
	"encoding/xml"
	"io"
	"slices"
)

// drawable lists the SVG elements the rasterizer draws.
var drawable = map[string]bool{
	"svg": true, "g": true, "use": true, "defs": true,
	"path": true, "rect": true, "circle": true, "ellipse": true,
	"line": true, "polyline": true, "polygon": true,
	"linearGradient": true, "radialGradient": true, "stop": true,
}

// inert elements carry no pixels; their subtrees are not inspected.
var inert = map[string]bool{
	"title": true, "desc": true, "metadata": true,
}

// Unsupported returns the distinct names of elements in data that the
// rasterizer cannot draw, such as text, image and foreignObject, in document
// order.
func Unsupported(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var names []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		name := start.Name.Local
		switch {
		case inert[name]:
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case !drawable[name] && !slices.Contains(names, name):
			names = append(names, name)
		}
	}
}
