// Package source loads host documents from files.
//
// Supported inputs, by extension:
//
//   - .html, .htm: parsed as-is
//   - .svg: a standalone graphic, wrapped into a minimal HTML page
//   - .dot, .gv: a Graphviz graph, rendered to SVG and wrapped
//
// Rendered Graphviz output is cached by content hash when the [Loader] has a
// cache.
package source

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pngexport/pkg/cache"
	"github.com/matzehuels/pngexport/pkg/dom"
	"github.com/matzehuels/pngexport/pkg/errors"
	"github.com/matzehuels/pngexport/pkg/observability"
)

// Kind is the type of a source file.
type Kind string

// Supported source kinds.
const (
	KindHTML Kind = "html"
	KindSVG  Kind = "svg"
	KindDOT  Kind = "dot"
)

var kindByExt = map[string]Kind{
	".html": KindHTML,
	".htm":  KindHTML,
	".svg":  KindSVG,
	".dot":  KindDOT,
	".gv":   KindDOT,
}

// KindOf returns the source kind for path based on its extension.
func KindOf(path string) (Kind, error) {
	if k, ok := kindByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return k, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported,
		"unsupported source %q (want .html, .htm, .svg, .dot or .gv)", filepath.Base(path))
}

// Loader reads source files into documents.
type Loader struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewLoader creates a loader. A nil cache disables caching.
func NewLoader(c cache.Cache, logger *log.Logger) *Loader {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loader{Cache: c, Keyer: cache.NewDefaultKeyer(), Logger: logger}
}

// Load is [Loader.Load] without caching.
func Load(ctx context.Context, path string) (*dom.Document, error) {
	return NewLoader(nil, nil).Load(ctx, path)
}

// Load reads the file at path.
func (l *Loader) Load(ctx context.Context, path string) (*dom.Document, error) {
	kind, err := KindOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "source %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "read %s", path)
	}
	l.Logger.Debug("loading source", "path", path, "kind", kind, "bytes", len(data))
	return l.LoadBytes(ctx, kind, data, filepath.Base(path))
}

// LoadBytes parses data of the given kind. title names the wrapper page of
// standalone graphics.
func (l *Loader) LoadBytes(ctx context.Context, kind Kind, data []byte, title string) (*dom.Document, error) {
	switch kind {
	case KindHTML:
		return dom.Parse(bytes.NewReader(data))
	case KindSVG:
		return dom.ParseString(Wrap(data, title))
	case KindDOT:
		svg, err := l.renderDOT(ctx, data)
		if err != nil {
			return nil, err
		}
		return dom.ParseString(Wrap(svg, title))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported source kind %q", kind)
	}
}

func (l *Loader) renderDOT(ctx context.Context, dot []byte) ([]byte, error) {
	key := l.Keyer.SourceKey(string(KindDOT), cache.Hash(dot))
	if data, hit, err := l.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "source")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	svg, err := RenderDOT(ctx, dot)
	if err != nil {
		return nil, err
	}
	if err := l.Cache.Set(ctx, key, svg, cache.TTLSource); err == nil {
		observability.Cache().OnCacheSet(ctx, "source", len(svg))
	}
	return svg, nil
}

// Wrap embeds a standalone SVG document into a minimal HTML page.
func Wrap(svg []byte, title string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(title))
	b.WriteString("</head><body>\n")
	b.Write(stripProlog(svg))
	b.WriteString("\n</body></html>\n")
	return b.String()
}

// stripProlog drops an XML declaration and doctype ahead of the root
// element.
func stripProlog(svg []byte) []byte {
	if i := bytes.Index(svg, []byte("<svg")); i > 0 {
		return svg[i:]
	}
	return svg
}
