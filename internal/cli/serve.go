package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pngexport/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		strict  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a document with PNG download links for its graphics",
		Long: `Serve a document over HTTP.

  GET /          the document
  GET /graphics  its graphics as JSON
  GET /export    ?selector=&filename=&width=&height= as a PNG download`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("strict") {
				cfg.Export.Strict = strict
			}

			ctx := cmd.Context()
			s, err := c.openSession(ctx, cfg, args[0], nil, noCache)
			if err != nil {
				return err
			}
			defer s.Close()

			printSuccess("Serving %s", StyleHighlight.Render(args[0]))
			printDetail("http://%s/", cfg.Server.Addr)
			return c.serve(ctx, server.New(s.exporter, c.Logger), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().BoolVar(&strict, "strict", true, "fail on unsupported SVG content such as text (--strict=false skips it)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) serve(ctx context.Context, s *server.Server, addr string) error {
	err := s.ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
