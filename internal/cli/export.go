package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pngexport/pkg/config"
	"github.com/matzehuels/pngexport/pkg/deliver"
	"github.com/matzehuels/pngexport/pkg/errors"
	"github.com/matzehuels/pngexport/pkg/export"
	"github.com/matzehuels/pngexport/pkg/source"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	selector  string  // CSS selector of the graphic
	output    string  // file name of the PNG
	width     float64 // target width in pixels (0 = intrinsic)
	height    float64 // target height in pixels (0 = intrinsic)
	dir       string  // download directory
	overwrite bool    // replace existing files instead of numbering
	strict    bool    // fail on unsupported SVG features
	noCache   bool    // disable the payload cache
	refresh   bool    // bypass cached payloads
	all       bool    // export every graphic of the document
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export SVG graphics of a document as PNG",
		Long: `Export SVG graphics of a document as PNG.

The file may be an HTML page (.html, .htm), a standalone SVG (.svg) or a
Graphviz graph (.dot, .gv). The graphic is picked with --selector; documents
with a single graphic need no selector. With --width or --height alone the
graphic is scaled uniformly; with both it is stretched to fit.

Images are saved to the download directory. Existing files are kept and the
new image is saved as "name (1).png" unless --overwrite is given.`,
		Example: `  pngexport export report.html -s '#revenue' --width 1200
  pngexport export deps.dot -o deps.png
  pngexport export report.html --all --dir ./images`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyExportDefaults(cmd, cfg, &opts)
			return c.runExport(cmd.Context(), cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.selector, "selector", "s", "", "CSS selector of the <svg> to export")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file name of the PNG (default derived from the graphic)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "target width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "target height in pixels")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "download directory (default from config)")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "replace existing files")
	cmd.Flags().BoolVar(&opts.strict, "strict", true, "fail on unsupported SVG content such as text (--strict=false skips it)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if a cached image exists")
	cmd.Flags().BoolVar(&opts.all, "all", false, "export every graphic of the document")

	return cmd
}

// applyExportDefaults fills flags the user did not set from the config.
func applyExportDefaults(cmd *cobra.Command, cfg *config.Config, opts *exportOpts) {
	flags := cmd.Flags()
	if !flags.Changed("width") {
		opts.width = cfg.Export.Width
	}
	if !flags.Changed("height") {
		opts.height = cfg.Export.Height
	}
	if !flags.Changed("dir") {
		opts.dir = cfg.DownloadDir()
	}
	if !flags.Changed("overwrite") {
		opts.overwrite = cfg.Export.Overwrite
	}
	if flags.Changed("strict") {
		cfg.Export.Strict = opts.strict
	}
}

// runExport loads the document and exports the requested graphics.
func (c *CLI) runExport(ctx context.Context, cfg *config.Config, input string, opts exportOpts) error {
	var (
		mu    sync.Mutex
		saved []string
	)
	dir := deliver.NewDir(opts.dir, opts.overwrite, c.Logger)
	dir.Saved = func(path string) {
		mu.Lock()
		saved = append(saved, path)
		mu.Unlock()
	}

	s, err := c.openSession(ctx, cfg, input, dir, opts.noCache)
	if err != nil {
		return err
	}
	defer s.Close()

	graphics, err := source.Graphics(s.doc)
	if err != nil {
		return err
	}
	reqs, err := exportRequests(input, graphics, opts)
	if err != nil {
		return err
	}

	msg := "Exporting graphic..."
	if len(reqs) > 1 {
		msg = fmt.Sprintf("Exporting %d graphics...", len(reqs))
	}
	spinner := newSpinnerWithContext(ctx, msg)
	spinner.Start()

	prog := newProgress(c.Logger)
	results, err := s.exporter.RunAll(ctx, reqs)
	if err != nil {
		spinner.StopWithError("Export failed")
		if n := printExports(results, saved); n > 0 {
			printWarning("%d of %d graphics exported before the failure", n, len(reqs))
		}
		return fmt.Errorf("export: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Exported %d graphic(s)", len(results)))
	printExports(results, saved)
	return nil
}

// printExports prints the successful exports among results and the saved
// files, and returns the number of successes.
func printExports(results []*export.Result, saved []string) int {
	n := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		n++
		printSuccess("Exported %s", StyleHighlight.Render(res.Filename))
		printStats(res.Width, res.Height, res.Size, res.CacheInfo.ArtifactHit)
		if len(res.Skipped) > 0 {
			printWarning("Left out unsupported <%s>", strings.Join(res.Skipped, ">, <"))
		}
	}
	for _, path := range saved {
		printFile(path)
	}
	return n
}

// exportRequests turns the flags into export requests.
func exportRequests(input string, graphics []source.Graphic, opts exportOpts) ([]export.Request, error) {
	base := export.Request{
		Options: export.Options{Width: opts.width, Height: opts.height},
		Refresh: opts.refresh,
	}

	if opts.all {
		if opts.output != "" {
			return nil, fmt.Errorf("--output cannot be combined with --all")
		}
		var reqs []export.Request
		for _, g := range graphics {
			if !g.Exportable() {
				continue
			}
			req := base
			req.Selector = g.Selector
			req.Filename = errors.PNGFilename(stem(input) + "-" + g.ID)
			reqs = append(reqs, req)
		}
		if len(reqs) == 0 {
			return nil, errors.New(errors.ErrCodeSourceNotFound, "%s has no exportable graphics", input)
		}
		return reqs, nil
	}

	req := base
	req.Selector = opts.selector
	name := opts.output
	if req.Selector == "" {
		if len(graphics) != 1 {
			return nil, fmt.Errorf("%s has %d graphics; pick one with --selector (see 'pngexport list')", input, len(graphics))
		}
		req.Selector = graphics[0].Selector
	}
	if name == "" {
		name = defaultFilename(input, req.Selector, graphics)
	}
	req.Filename = errors.PNGFilename(name)
	return []export.Request{req}, nil
}

// defaultFilename names the PNG after the source file, and after the graphic
// when the document holds more than one.
func defaultFilename(input, selector string, graphics []source.Graphic) string {
	if len(graphics) <= 1 {
		return stem(input)
	}
	for _, g := range graphics {
		if g.Selector == selector {
			return stem(input) + "-" + g.ID
		}
	}
	return stem(input)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
