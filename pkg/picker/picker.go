// Package picker presents a flat, filterable pick list of installed
// documents and returns the user's selection. It is only usable on a real
// terminal; non-interactive callers must pass the resource explicitly.
package picker

import (
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/promptstash/promptstash/pkg/tree"
)

var (
	// ErrNoSelection is returned when the user dismisses the pick list.
	ErrNoSelection = errors.New("no resource selected")
	// ErrNotInteractive is returned when stdout is not a terminal.
	ErrNotInteractive = errors.New("interactive selection requires a terminal")
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "#7aa2f7", Dark: "#7aa2f7"})

type item struct {
	node tree.ResourceNode
}

func (i item) Title() string { return i.node.Label }

func (i item) Description() string {
	if i.node.Description != "" {
		return i.node.Description
	}
	return i.node.RelPath
}

func (i item) FilterValue() string { return i.node.Label + " " + i.node.RelPath }

type model struct {
	list   list.Model
	choice *tree.ResourceNode
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// Don't intercept keys while the user is typing a filter.
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(item); ok {
				node := selected.node
				m.choice = &node
			}
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	return m.list.View()
}

// Pick shows the pick list and blocks until the user selects a document or
// dismisses the list.
func Pick(title string, nodes []tree.ResourceNode) (*tree.ResourceNode, error) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil, ErrNotInteractive
	}
	if len(nodes) == 0 {
		return nil, errors.New("no resources are installed")
	}

	items := make([]list.Item, 0, len(nodes))
	for _, node := range nodes {
		items = append(items, item{node: node})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.Styles.Title = titleStyle

	final, err := tea.NewProgram(model{list: l}, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, errors.Wrap(err, "failed to run pick list")
	}

	m, ok := final.(model)
	if !ok || m.choice == nil {
		return nil, ErrNoSelection
	}

	return m.choice, nil
}
