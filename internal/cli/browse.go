package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// treeListModel is the bubbletea model for paging through enumerated trees.
type treeListModel struct {
	trees  []string
	cursor int
	offset int
	height int
}

// newTreeListModel creates a list model over the given Newick lines.
func newTreeListModel(trees []string) treeListModel {
	return treeListModel{
		trees:  trees,
		height: 15,
	}
}

func (m treeListModel) Init() tea.Cmd {
	return nil
}

func (m treeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.trees)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "home", "g":
			m.cursor = 0
			m.offset = 0
		case "end", "G":
			m.cursor = len(m.trees) - 1
			if m.cursor >= m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case tea.WindowSizeMsg:
		if msg.Height > 4 {
			m.height = msg.Height - 4
		}
	}
	return m, nil
}

func (m treeListModel) View() string {
	s := StyleTitle.Render(fmt.Sprintf("Terrace members (%d trees)", len(m.trees))) + "\n\n"

	end := m.offset + m.height
	if end > len(m.trees) {
		end = len(m.trees)
	}
	for i := m.offset; i < end; i++ {
		line := fmt.Sprintf("%4d  %s", i+1, m.trees[i])
		if i == m.cursor {
			s += listSelectedStyle.Render("▸ "+line) + "\n"
		} else {
			s += listNormalStyle.Render("  "+line) + "\n"
		}
	}

	s += "\n" + listDimStyle.Render("↑/↓ move · g/G first/last · q quit")
	return s
}

// browseTrees runs the interactive tree pager over the given Newick lines.
func browseTrees(trees []string) error {
	if len(trees) == 0 {
		printInfo("nothing to browse")
		return nil
	}
	_, err := tea.NewProgram(newTreeListModel(trees)).Run()
	return err
}
