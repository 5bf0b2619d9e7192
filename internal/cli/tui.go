package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// modelListModel is the bubbletea model for interactive highlight
// selection. The chosen model's features stay visible in the diagram;
// everything it lacks is drawn invisible.
type modelListModel struct {
	names    []string
	cursor   int
	selected int // 1-based choice, 0 when aborted or "all models"
	done     bool
}

func newModelListModel(names []string) modelListModel {
	return modelListModel{names: names}
}

func (m modelListModel) Init() tea.Cmd {
	return nil
}

func (m modelListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.names) {
				m.cursor++
			}
		case "enter":
			// Index 0 is "all models"; model rows are 1-based already.
			m.selected = m.cursor
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m modelListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Highlight Model"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := append([]string{"(all models)"}, m.names...)
	for i, name := range rows {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s", cursor, name)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// selectModel runs the interactive picker and returns the chosen
// 1-based model index, or 0 for all models.
func selectModel(names []string) (int, error) {
	program := tea.NewProgram(newModelListModel(names))
	final, err := program.Run()
	if err != nil {
		return 0, err
	}

	m, ok := final.(modelListModel)
	if !ok || !m.done {
		return 0, nil
	}
	return m.selected, nil
}
