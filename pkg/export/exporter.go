package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pngexport/pkg/cache"
	"github.com/matzehuels/pngexport/pkg/deliver"
	"github.com/matzehuels/pngexport/pkg/dom"
	"github.com/matzehuels/pngexport/pkg/errors"
	"github.com/matzehuels/pngexport/pkg/metrics"
	"github.com/matzehuels/pngexport/pkg/observability"
	"github.com/matzehuels/pngexport/pkg/raster"
	"github.com/matzehuels/pngexport/pkg/tracker"
)

// Exporter runs exports against one document.
//
// An Exporter holds no per-request state; every export gets its own tracker,
// so one Exporter can serve concurrent requests.
type Exporter struct {
	Doc       *dom.Document
	Deliverer deliver.Deliverer
	Decoder   *raster.Decoder
	Cache     cache.Cache
	Keyer     cache.Keyer
	CacheTTL  time.Duration
	Logger    *log.Logger

	// Concurrency limits RunAll; zero or less means unlimited.
	Concurrency int
}

// New creates an exporter. A nil cache disables caching; a nil logger
// discards output.
func New(doc *dom.Document, d deliver.Deliverer, c cache.Cache, logger *log.Logger) *Exporter {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Exporter{
		Doc:       doc,
		Deliverer: d,
		Decoder:   raster.NewDecoder(logger),
		Cache:     c,
		Keyer:     cache.NewDefaultKeyer(),
		CacheTTL:  cache.TTLArtifact,
		Logger:    logger,
	}
}

// ExportGraphicAsPNG exports the <svg> element matched by selector as a PNG
// named filename.
func (e *Exporter) ExportGraphicAsPNG(ctx context.Context, selector, filename string, opts Options) error {
	return e.Export(ctx, Request{Selector: selector, Filename: filename, Options: opts})
}

// Export runs one export and reports only its error.
func (e *Exporter) Export(ctx context.Context, req Request) error {
	_, err := e.Run(ctx, req)
	return err
}

// ExportAsync runs an export on its own goroutine. The returned channel
// receives exactly one value and is then closed.
func (e *Exporter) ExportAsync(ctx context.Context, req Request) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- e.Export(ctx, req)
	}()
	return ch
}

// ExportAll runs several exports concurrently and returns the first error.
// A failing export does not stop the others.
func (e *Exporter) ExportAll(ctx context.Context, reqs []Request) error {
	_, err := e.RunAll(ctx, reqs)
	return err
}

// RunAll is [Exporter.ExportAll] returning per-request results in input
// order. Failed exports leave a nil entry.
func (e *Exporter) RunAll(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	var g errgroup.Group
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for i, req := range reqs {
		g.Go(func() error {
			res, err := e.Run(ctx, req)
			if err != nil {
				return fmt.Errorf("export %s as %s: %w", req.Selector, req.Filename, err)
			}
			results[i] = res
			return nil
		})
	}
	return results, g.Wait()
}

// Run executes the export pipeline.
func (e *Exporter) Run(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	tr := tracker.New(e.Logger)
	logger := e.Logger.With("request", tr.ID())
	hooks := observability.Export()

	hooks.OnExportStart(ctx, tr.ID(), req.Selector)
	defer func() {
		size := 0
		if res != nil {
			size = res.Size
		}
		hooks.OnExportComplete(ctx, tr.ID(), size, time.Since(start), err)
	}()
	defer func() {
		released := tr.ReleaseAll()
		if res != nil {
			res.Released = released
			res.Stats.TotalTime = time.Since(start)
		}
	}()

	if err := errors.ValidateFilename(req.Filename); err != nil {
		return nil, err
	}
	source, err := e.source(req.Selector)
	if err != nil {
		return nil, err
	}

	w0, h0, err := metrics.Intrinsic(source.Attr("width"), source.Attr("height"), source.Attr("viewBox"))
	if err != nil {
		return nil, err
	}
	m, err := metrics.Resolve(w0, h0, req.Options)
	if err != nil {
		return nil, err
	}
	pw, ph := m.PixelSize()
	if err := raster.CheckSize(pw, ph); err != nil {
		return nil, err
	}
	logger.Debug("resolved metrics",
		"selector", req.Selector,
		"intrinsic", fmt.Sprintf("%gx%g", w0, h0),
		"canvas", fmt.Sprintf("%dx%d", pw, ph),
		"scale", fmt.Sprintf("%g,%g", m.ScaleX, m.ScaleY))

	res = &Result{
		RequestID: tr.ID(),
		Filename:  req.Filename,
		Metrics:   m,
		Width:     pw,
		Height:    ph,
	}

	snapStart := time.Now()
	markup, err := e.snapshot(tr, source, w0, h0)
	if err != nil {
		return nil, err
	}
	res.Stats.SnapshotTime = time.Since(snapStart)

	key := e.Keyer.ArtifactKey(cache.Hash([]byte(markup)), cache.ArtifactKeyOpts{
		Format: "png",
		Width:  pw,
		Height: ph,
		ScaleX: m.ScaleX,
		ScaleY: m.ScaleY,
		Strict: e.Decoder.Strict,
	})

	var data []byte
	if !req.Refresh {
		if cached, hit, cerr := e.Cache.Get(ctx, key); cerr == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			data = cached
			res.CacheInfo.ArtifactHit = true
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
	}

	if data == nil {
		data, err = e.render(ctx, tr, logger, markup, m, res)
		if err != nil {
			return nil, err
		}
		if err := e.Cache.Set(ctx, key, data, e.CacheTTL); err != nil {
			logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	res.Size = len(data)

	deliverStart := time.Now()
	if err := e.deliver(ctx, req, data); err != nil {
		return nil, err
	}
	res.Stats.DeliverTime = time.Since(deliverStart)

	logger.Info("exported graphic",
		"file", req.Filename,
		"size", fmt.Sprintf("%dx%d", pw, ph),
		"bytes", len(data),
		"cached", res.CacheInfo.ArtifactHit,
		"duration", time.Since(start))
	return res, nil
}

// source looks up the graphic to export.
func (e *Exporter) source(selector string) (*dom.Element, error) {
	el, err := e.Doc.Query(selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, errors.New(errors.ErrCodeSourceNotFound, "no element matches %q", selector)
	}
	if !el.IsSVG() {
		return nil, errors.New(errors.ErrCodeInvalidSource, "%q matches <%s>, not <svg>", selector, el.Tag())
	}
	return el, nil
}

// snapshot copies the source into a standalone <svg> inside a hidden
// container and returns the container's markup.
func (e *Exporter) snapshot(tr *tracker.Tracker, source *dom.Element, w0, h0 float64) (string, error) {
	container, err := tracker.Allocate(tr, RoleContainer, func() (element, error) {
		body := e.Doc.Body()
		if body == nil {
			return element{}, errors.New(errors.ErrCodeInternal, "document has no body")
		}

		div := e.Doc.CreateElement("div")
		div.SetAttr("id", tr.ElementID(RoleContainer))
		div.SetStyle("display", "none")

		svg := e.Doc.CreateSVGElement("svg")
		svg.SetAttr("version", "1.1")
		svg.SetAttr("xmlns", dom.SVGNamespace)
		svg.SetAttr("xmlns:xlink", dom.XLinkNamespace)
		svg.SetAttr("width", formatLength(w0))
		svg.SetAttr("height", formatLength(h0))
		for _, name := range []string{"viewBox", "preserveAspectRatio"} {
			if v, ok := source.LookupAttr(name); ok {
				svg.SetAttr(name, v)
			}
		}
		svg.CloneChildren(source)

		div.AppendChild(svg)
		body.AppendChild(div)
		return element{div}, nil
	})
	if err != nil {
		return "", err
	}
	return container.InnerHTML()
}

// render rasterizes the snapshot markup and encodes it as PNG.
func (e *Exporter) render(ctx context.Context, tr *tracker.Tracker, logger *log.Logger, markup string, m metrics.Metrics, res *Result) ([]byte, error) {
	pw, ph := m.PixelSize()
	surface, err := tracker.Allocate(tr, RoleSurface, func() (*canvas, error) {
		return e.newCanvas(tr.ElementID(RoleSurface), pw, ph)
	})
	if err != nil {
		return nil, err
	}
	gc := surface.Context()
	gc.Scale(m.ScaleX, m.ScaleY)

	decodeStart := time.Now()
	img, err := e.Decoder.Decode(raster.EncodeDataURI(raster.MediaTypeSVG, []byte(markup))).Wait()
	res.Stats.DecodeTime = time.Since(decodeStart)
	observability.Export().OnDecodeComplete(ctx, tr.ID(), res.Stats.DecodeTime, err)
	if err != nil {
		return nil, err
	}
	res.Skipped = img.Skipped

	renderStart := time.Now()
	if err := gc.DrawImage(img, 0, 0); err != nil {
		return nil, err
	}
	data, err := raster.EncodePNG(surface.Surface)
	if err != nil {
		return nil, err
	}
	res.Stats.RenderTime = time.Since(renderStart)
	logger.Debug("rendered surface", "bytes", len(data), "decode", res.Stats.DecodeTime, "render", res.Stats.RenderTime)
	return data, nil
}

func (e *Exporter) deliver(ctx context.Context, req Request, data []byte) error {
	d := req.Deliverer
	if d == nil {
		d = e.Deliverer
	}
	if d == nil {
		return errors.New(errors.ErrCodeDeliveryFailure, "no deliverer configured")
	}
	err := d.Deliver(ctx, deliver.Payload{
		Filename:  req.Filename,
		MediaType: raster.MediaTypePNG,
		Data:      data,
	})
	if err != nil && !errors.Is(err, errors.ErrCodeDeliveryFailure) {
		return errors.Wrap(errors.ErrCodeDeliveryFailure, err, "deliver %s", req.Filename)
	}
	return err
}

func formatLength(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
