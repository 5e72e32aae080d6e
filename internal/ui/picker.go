package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

type pickItem struct {
	item prompt.Item
}

func (i pickItem) Title() string       { return i.item.Label }
func (i pickItem) Description() string { return i.item.Description }
func (i pickItem) FilterValue() string { return i.item.Label }

// pickModel is a filterable single-choice list.
type pickModel struct {
	list      list.Model
	chosen    prompt.Item
	ok        bool
	cancelled bool
}

func newPickModel(p prompt.Pick, width, height int) pickModel {
	items := make([]list.Item, len(p.Items))
	showDescription := false
	for i, it := range p.Items {
		items[i] = pickItem{item: it}
		if it.Description != "" {
			showDescription = true
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = showDescription

	l := list.New(items, delegate, width, height)
	l.Title = p.Title
	if p.Placeholder != "" {
		l.Title = p.Title + ": " + p.Placeholder
	}
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	return pickModel{list: l}
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if it, ok := m.list.SelectedItem().(pickItem); ok {
				m.chosen = it.item
				m.ok = true
			} else {
				m.cancelled = true
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickModel) View() string {
	if m.ok || m.cancelled {
		return ""
	}
	return m.list.View() + "\n" + helpStyle.Render("↑/↓ move • / filter • enter select • esc cancel")
}
