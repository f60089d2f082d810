package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// Element is a handle to an element node of a [Document].
type Element struct {
	doc  *Document
	node *html.Node
}

// Is reports whether e and other refer to the same node.
func (e *Element) Is(other *Element) bool {
	return other != nil && e.node == other.node
}

// Tag returns the lower-case local name, e.g. "svg" or "div".
func (e *Element) Tag() string {
	return strings.ToLower(e.node.Data)
}

// IsSVG reports whether e is an <svg> element.
func (e *Element) IsSVG() bool {
	return e.Tag() == "svg"
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.Attr("id")
}

// Attr returns the value of the named attribute, or "" when absent.
func (e *Element) Attr(name string) string {
	v, _ := e.LookupAttr(name)
	return v
}

// LookupAttr returns the named attribute and whether it is present.
// Prefixed names such as "xlink:href" are matched against the attribute's
// namespace.
func (e *Element) LookupAttr(name string) (string, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	ns, key := splitName(name)
	for _, a := range e.node.Attr {
		if a.Namespace == ns && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.node, name, value)
}

// SetStyle sets one inline style property, keeping the others.
func (e *Element) SetStyle(property, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var decls []string
	replaced := false
	for _, decl := range strings.Split(attr(e.node, "style"), ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(prop), property) {
			decl = property + ": " + value
			replaced = true
		}
		decls = append(decls, decl)
	}
	if !replaced {
		decls = append(decls, property+": "+value)
	}
	setAttr(e.node, "style", strings.Join(decls, "; "))
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if p := child.node.Parent; p != nil {
		p.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// CloneChildren appends deep copies of src's children to e. The source is
// left untouched.
func (e *Element) CloneChildren(src *Element) {
	if src.doc != e.doc {
		src.doc.mu.RLock()
		defer src.doc.mu.RUnlock()
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for c := src.node.FirstChild; c != nil; c = c.NextSibling {
		e.node.AppendChild(cloneNode(c))
	}
}

// Remove detaches e from its parent. Removing a detached element fails.
func (e *Element) Remove() error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.node.Parent == nil {
		return errors.New(errors.ErrCodeNotFound, "<%s> is not attached", e.node.Data)
	}
	e.node.Parent.RemoveChild(e.node)
	return nil
}

// Attached reports whether e is reachable from the document root.
func (e *Element) Attached() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	n := e.node
	for n.Parent != nil {
		n = n.Parent
	}
	return n == e.doc.root
}

// OuterHTML serializes e and its descendants.
func (e *Element) OuterHTML() (string, error) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize <%s>", e.node.Data)
	}
	return buf.String(), nil
}

// InnerHTML serializes e's descendants.
func (e *Element) InnerHTML() (string, error) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize <%s>", e.node.Data)
		}
	}
	return buf.String(), nil
}

// Children returns e's element children.
func (e *Element) Children() []*Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{doc: e.doc, node: c})
		}
	}
	return out
}

func splitName(name string) (ns, key string) {
	if prefix, local, ok := strings.Cut(name, ":"); ok && prefix != "xmlns" {
		return prefix, local
	}
	return "", name
}

func setAttr(n *html.Node, name, value string) {
	ns, key := splitName(name)
	for i, a := range n.Attr {
		if a.Namespace == ns && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Namespace: ns, Key: key, Val: value})
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}
