package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// pickCommand creates the pick command for choosing a graphic interactively.
func (c *CLI) pickCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "pick [file]",
		Short: "Choose a graphic interactively and export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyExportDefaults(cmd, cfg, &opts)

			selector, err := c.pickGraphic(cmd.Context(), args[0])
			if err != nil || selector == "" {
				return err
			}
			opts.selector = selector
			return c.runExport(cmd.Context(), cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file name of the PNG (default derived from the graphic)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "target width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "target height in pixels")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "download directory (default from config)")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "replace existing files")
	cmd.Flags().BoolVar(&opts.strict, "strict", true, "fail on unsupported SVG content such as text (--strict=false skips it)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// pickGraphic runs the picker and returns the chosen selector, or "" when
// the user quit.
func (c *CLI) pickGraphic(ctx context.Context, input string) (string, error) {
	graphics, err := c.loadGraphics(ctx, input)
	if err != nil {
		return "", err
	}
	if len(graphics) == 0 {
		printWarning("No graphics in %s", input)
		return "", nil
	}

	model := NewGraphicListModel("Select Graphic · "+input, graphics)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(GraphicListModel)
	if !ok || m.Selected == nil {
		printInfo("Nothing selected")
		return "", nil
	}
	return m.Selected.Selector, nil
}
