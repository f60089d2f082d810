package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pngexport/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Global flags:
//   - --config: config file (default $XDG_CONFIG_HOME/pngexport/config.toml)
//
// The --verbose flag is added by main, which owns the log level.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pngexport saves SVG graphics of a document as PNG images",
		Long: `pngexport rasterizes the <svg> graphics of an HTML page, standalone SVG file
or Graphviz DOT graph into PNG images, optionally scaled to a target width
or height, and saves them to a download directory or serves them over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+defaultConfigHint+")")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

const defaultConfigHint = "$XDG_CONFIG_HOME/" + appName + "/config.toml"
