package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pngexport/pkg/source"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// GraphicListModel - Interactive graphic selection
// =============================================================================

// GraphicListModel is the bubbletea model for interactive graphic selection.
type GraphicListModel struct {
	Title    string
	Graphics []source.Graphic
	Cursor   int
	Selected *source.Graphic
	Height   int
	Offset   int
}

// NewGraphicListModel creates a new graphic list model.
func NewGraphicListModel(title string, graphics []source.Graphic) GraphicListModel {
	return GraphicListModel{
		Title:    title,
		Graphics: graphics,
		Height:   15,
	}
}

func (m GraphicListModel) Init() tea.Cmd {
	return nil
}

func (m GraphicListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Graphics)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Graphics) == 0 {
				return m, nil
			}
			g := m.Graphics[m.Cursor]
			if !g.Exportable() {
				return m, nil
			}
			m.Selected = &g
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m GraphicListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ export  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Graphics))
	visible := m.Graphics[m.Offset:end]
	b.WriteString(graphicsTable(visible, m.Cursor-m.Offset).Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Graphics))))

	return b.String()
}
