// Package export implements the SVG to PNG export pipeline.
//
// An export takes an <svg> element from a host document, rasterizes it at a
// requested size and hands the PNG to a deliverer under a chosen file name:
//
//  1. Resolve: intrinsic size + requested size → canvas size and scale
//  2. Snapshot: copy the graphic into a standalone, namespaced <svg>
//  3. Decode: load the snapshot as an image (asynchronous)
//  4. Draw: paint the image onto a scaled offscreen surface
//  5. Encode: PNG-encode the surface
//  6. Deliver: hand the payload to the user
//
// Every temporary object (the hidden snapshot container, the canvas element
// and its pixel buffer) is registered with a per-request tracker and
// released when the export returns, whatever the outcome.
//
// # Usage
//
//	doc, _ := dom.ParseString(page)
//	exp := export.New(doc, deliver.NewDir("downloads", false, logger), nil, logger)
//
//	err := exp.ExportGraphicAsPNG(ctx, "#chart", "chart.png", export.Options{Width: 1200})
//
// Run returns a [Result] with the resolved metrics and stage timings:
//
//	res, err := exp.Run(ctx, export.Request{Selector: "#chart", Filename: "chart.png"})
package export

import (
	"time"

	"github.com/matzehuels/pngexport/pkg/deliver"
	"github.com/matzehuels/pngexport/pkg/metrics"
)

// Tracker roles of the temporary resources an export allocates.
const (
	RoleContainer = "container"
	RoleSurface   = "surface"
)

// Options are the requested output dimensions. A zero field is unset.
type Options = metrics.Options

// Request describes one export.
type Request struct {
	// Selector locates the source <svg> element.
	Selector string `json:"selector"`

	// Filename is the name the PNG is delivered under.
	Filename string `json:"filename"`

	// Options are the requested output dimensions.
	Options Options `json:"options"`

	// Refresh bypasses the payload cache.
	Refresh bool `json:"refresh,omitempty"`

	// Deliverer overrides the exporter's deliverer for this request.
	Deliverer deliver.Deliverer `json:"-"`
}

// Result contains the outcome of an export.
type Result struct {
	// RequestID identifies the export in logs and element ids.
	RequestID string

	// Filename is the delivered file name.
	Filename string

	// Metrics are the resolved canvas size and scale.
	Metrics metrics.Metrics

	// Width and Height are the PNG size in pixels.
	Width, Height int

	// Size is the PNG payload size in bytes.
	Size int

	// Skipped names unsupported SVG elements left out by a lenient decode.
	Skipped []string

	// Released is the number of temporary resources released cleanly.
	Released int

	// Stats contains stage timings.
	Stats Stats

	// CacheInfo tracks whether the payload came from cache.
	CacheInfo CacheInfo
}

// Stats contains export timings.
type Stats struct {
	SnapshotTime time.Duration
	DecodeTime   time.Duration
	RenderTime   time.Duration
	DeliverTime  time.Duration
	TotalTime    time.Duration
}

// CacheInfo tracks cache usage for an export.
type CacheInfo struct {
	ArtifactHit bool // Whether the PNG payload came from cache
}
