package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// choiceModel is a message with a row of buttons. Esc, q and ctrl+c dismiss
// it with no choice.
type choiceModel struct {
	message string
	detail  string
	style   lipgloss.Style
	modal   bool
	options []string
	cursor  int
	chosen  string
	done    bool
}

func newChoiceModel(message, detail string, style lipgloss.Style, modal bool, options []string) choiceModel {
	if len(options) == 0 {
		options = []string{"OK"}
	}
	return choiceModel{message: message, detail: detail, style: style, modal: modal, options: options}
}

func (m choiceModel) Init() tea.Cmd {
	return nil
}

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.done = true
		return m, tea.Quit
	case "left", "h", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l", "tab":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.chosen = m.options[m.cursor]
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View drops the buttons once answered. A prompt with detail keeps its text as
// the final frame so it stays in the scrollback.
func (m choiceModel) View() string {
	if m.done {
		if m.detail == "" {
			return ""
		}
		return m.frame(m.body()) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.body())
	b.WriteString("\n\n")

	buttons := make([]string, 0, len(m.options))
	for i, opt := range m.options {
		style := buttonStyle
		if i == m.cursor {
			style = activeButtonStyle
		}
		buttons = append(buttons, style.Render(opt))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))

	return m.frame(b.String()) + "\n" + helpStyle.Render("←/→ choose • enter confirm • esc dismiss") + "\n"
}

func (m choiceModel) body() string {
	text := m.style.Render(m.message)
	if m.detail != "" {
		text += "\n\n" + m.detail
	}
	return text
}

func (m choiceModel) frame(body string) string {
	if m.modal {
		return modalStyle.Render(body)
	}
	return body
}
