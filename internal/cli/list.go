package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pngexport/pkg/source"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [file]",
		Short: "List the SVG graphics of a document",
		Long: `List the SVG graphics of a document with the selector to pass to
'pngexport export --selector' and their intrinsic size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runList(ctx context.Context, input string) error {
	graphics, err := c.loadGraphics(ctx, input)
	if err != nil {
		return err
	}
	if len(graphics) == 0 {
		printWarning("No graphics in %s", input)
		return nil
	}
	fmt.Println(graphicsTable(graphics, -1).Render())
	return nil
}

// loadGraphics reads the document at input and lists its graphics.
func (c *CLI) loadGraphics(ctx context.Context, input string) ([]source.Graphic, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := c.openSession(ctx, cfg, input, nil, false)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return source.Graphics(s.doc)
}

// graphicsTable renders graphics as a table. The row at cursor (if any) is
// highlighted.
func graphicsTable(graphics []source.Graphic, cursor int) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(graphics))
	for i, g := range graphics {
		size := StyleDim.Render("—")
		if g.Exportable() {
			size = fmt.Sprintf("%s × %s", formatSize(g.Width), formatSize(g.Height))
		}
		status := iconSuccess
		switch {
		case !g.Exportable():
			status = g.Error
		case len(g.Unsupported) > 0:
			status = iconWarning + " unsupported: " + strings.Join(g.Unsupported, ", ")
		}
		rows[i] = []string{strconv.Itoa(g.Index + 1), g.Selector, size, status}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Selector", "Size", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if row >= len(graphics) {
				return base
			}
			g := graphics[row]
			switch {
			case row == cursor && g.Exportable():
				return base.Foreground(colorGreen).Bold(true)
			case row == cursor:
				return base.Foreground(colorDim).Bold(true)
			case !g.Exportable():
				return base.Foreground(colorDim)
			case col == 3 && len(g.Unsupported) > 0:
				return base.Foreground(colorYellow)
			case col == 3:
				return base.Foreground(colorGreen)
			}
			return base
		})
}

func formatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
