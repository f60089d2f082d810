// Package pkg provides the libraries behind pngexport, which saves the SVG
// graphics of a document as PNG images.
//
// # Architecture
//
// An export runs through these packages:
//
//	source document (.html, .svg, .dot)
//	         ↓
//	    [source] load into a [dom] document, list graphics
//	         ↓
//	    [metrics] resolve canvas size and scale
//	         ↓
//	    [export] snapshot, decode, draw and encode, tracked by [tracker]
//	         ↓
//	    [raster] PNG bytes
//	         ↓
//	    [deliver] download directory, HTTP response, writer
//
// # Quick Start
//
//	doc, _ := source.Load(ctx, "report.html")
//	exp := export.New(doc, deliver.NewDir("out", false, nil), nil, nil)
//	err := exp.ExportGraphicAsPNG(ctx, "#revenue", "revenue.png", export.Options{Width: 1200})
//
// # Main Packages
//
//   - [metrics]: intrinsic size parsing and canvas resolution
//   - [tracker]: per-request resource ownership and release
//   - [export]: the render-encode-deliver pipeline
//   - [dom]: the host document and CSS selector lookup
//   - [raster]: surfaces, SVG decoding and PNG encoding
//   - [deliver]: output targets
//   - [source]: document loading and graphic discovery
//   - [cache]: payload cache backends
//   - [server]: HTTP host for a document
//   - [config]: TOML settings
//   - [errors]: error codes shared by all packages
//   - [observability]: hooks for metrics and tracing
//
// [metrics]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/metrics
// [tracker]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/tracker
// [export]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/export
// [dom]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/dom
// [raster]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/raster
// [deliver]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/deliver
// [source]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pngexport/pkg/observability
package pkg
