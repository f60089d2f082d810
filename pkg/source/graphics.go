package source

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/pngexport/pkg/dom"
	"github.com/matzehuels/pngexport/pkg/errors"
	"github.com/matzehuels/pngexport/pkg/metrics"
	"github.com/matzehuels/pngexport/pkg/raster"
	"github.com/matzehuels/pngexport/pkg/tracker"
)

// Graphic describes an exportable <svg> element of a document.
type Graphic struct {
	Index    int     `json:"index"`
	ID       string  `json:"id,omitempty"`
	Selector string  `json:"selector"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Error    string  `json:"error,omitempty"`

	// Unsupported names elements the rasterizer cannot draw. Strict exports
	// of the graphic fail; lenient exports leave them out.
	Unsupported []string `json:"unsupported,omitempty"`
}

// Exportable reports whether the graphic has a usable intrinsic size.
func (g Graphic) Exportable() bool {
	return g.Error == ""
}

var simpleID = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Graphics lists the document's <svg> elements in document order.
// Elements without an id are given one ("graphic-N") so that every graphic
// has a selector that stays valid while the document is served. Temporary
// export elements are skipped.
func Graphics(doc *dom.Document) ([]Graphic, error) {
	svgs, err := doc.QueryAll("svg")
	if err != nil {
		return nil, err
	}

	snapshots := exportSnapshots(doc)
	var out []Graphic
	for _, el := range svgs {
		if isSnapshot(snapshots, el) {
			continue
		}
		id := el.ID()
		if id == "" {
			for n := len(out) + 1; id == "" || doc.ElementByID(id) != nil; n++ {
				id = fmt.Sprintf("graphic-%d", n)
			}
			el.SetAttr("id", id)
		}

		g := Graphic{Index: len(out), ID: id, Selector: selectorFor(id)}
		w, h, err := metrics.Intrinsic(el.Attr("width"), el.Attr("height"), el.Attr("viewBox"))
		if err == nil {
			g.Width, g.Height = w, h
			_, err = metrics.Resolve(w, h, metrics.Options{})
		}
		if err != nil {
			g.Error = errors.UserMessage(err)
		}
		if markup, err := el.OuterHTML(); err == nil {
			g.Unsupported, _ = raster.Unsupported([]byte(markup))
		}
		out = append(out, g)
	}
	return out, nil
}

// exportSnapshots returns the <svg> copies held by in-flight exports.
func exportSnapshots(doc *dom.Document) []*dom.Element {
	var out []*dom.Element
	for _, c := range doc.Find(func(c *dom.Element) bool {
		return strings.HasPrefix(c.ID(), tracker.ElementPrefix+"-")
	}) {
		out = append(out, c.Children()...)
	}
	return out
}

func isSnapshot(snapshots []*dom.Element, el *dom.Element) bool {
	for _, s := range snapshots {
		if s.Is(el) {
			return true
		}
	}
	return false
}

func selectorFor(id string) string {
	if simpleID.MatchString(id) {
		return "#" + id
	}
	return `svg[id="` + strings.ReplaceAll(id, `"`, `\"`) + `"]`
}
