// Package dom is the host document the exporter reads graphics from and
// attaches its temporary elements to.
//
// A [Document] wraps a parsed HTML tree (golang.org/x/net/html). Inline
// <svg> elements keep their SVG namespace, so serializing an element yields
// markup an SVG decoder accepts. Lookups use CSS selectors.
//
// All reads and writes go through the document's lock, which makes a single
// document safe to share between concurrent exports. Elements are thin
// handles; two handles to the same node compare equal with [Element.Is].
package dom

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/ericchiang/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// Namespace URIs written on standalone SVG documents.
const (
	SVGNamespace   = "http://www.w3.org/2000/svg"
	XLinkNamespace = "http://www.w3.org/1999/xlink"
)

// Document is a parsed, mutable HTML document.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// Parse reads an HTML document. Fragments are completed with the implied
// html, head and body elements.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "parse document")
	}
	return &Document{root: root}, nil
}

// ParseString is [Parse] over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Query returns the first element matching selector, or nil when nothing
// matches. A malformed selector fails with INVALID_SELECTOR.
func (d *Document) Query(selector string) (*Element, error) {
	all, err := d.QueryAll(selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	if err := errors.ValidateSelector(selector); err != nil {
		return nil, err
	}
	sel, err := css.Parse(selector)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSelector, err, "invalid selector %q", selector)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	nodes := sel.Select(d.root)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, &Element{doc: d, node: n})
		}
	}
	return out, nil
}

// Find returns every element for which match reports true, in document
// order.
func (d *Document) Find(match func(*Element) bool) []*Element {
	d.mu.RLock()
	var all []*Element
	walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode {
			all = append(all, &Element{doc: d, node: n})
		}
	})
	d.mu.RUnlock()

	var out []*Element
	for _, el := range all {
		if match(el) {
			out = append(out, el)
		}
	}
	return out
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) *Element {
	found := d.Find(func(el *Element) bool { return el.ID() == id })
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// Body returns the document's body element.
func (d *Document) Body() *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var body *html.Node
	walk(d.root, func(n *html.Node) {
		if body == nil && n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
		}
	})
	if body == nil {
		return nil
	}
	return &Element{doc: d, node: body}
}

// CreateElement returns a new detached HTML element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return &Element{doc: d, node: &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}}
}

// CreateSVGElement returns a new detached element in the SVG namespace.
func (d *Document) CreateSVGElement(tag string) *Element {
	return &Element{doc: d, node: &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		DataAtom:  atom.Lookup([]byte(tag)),
		Namespace: "svg",
	}}
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// String returns the rendered document.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
