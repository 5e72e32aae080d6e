// Package ui implements the interactive terminal prompts.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

// Terminal is a prompt.Prompter that draws bubbletea dialogs. When stdin or
// stdout is not a terminal every question is treated as dismissed.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// New returns a Terminal bound to the given files.
func New(in, out *os.File) *Terminal {
	return &Terminal{in: in, out: out, interactive: isTerminal(in) && isTerminal(out)}
}

// NewPlain returns a non-interactive Terminal that writes to out.
func NewPlain(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Interactive reports whether dialogs can be shown.
func (t *Terminal) Interactive() bool {
	return t.interactive
}

func (t *Terminal) Notify(level prompt.Level, message string) {
	fmt.Fprintln(t.out, levelStyle(level).Render(level.String()+":")+" "+message)
}

func (t *Terminal) Ask(ctx context.Context, p prompt.Prompt) (string, error) {
	if !t.interactive {
		t.printStatic(p)
		return "", nil
	}

	final, err := t.run(ctx, newChoiceModel(p.Message, p.Detail, levelStyle(p.Level), p.Modal, p.Options))
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", p.ID, err)
	}
	return final.(choiceModel).chosen, nil
}

func (t *Terminal) Select(ctx context.Context, p prompt.Pick) (prompt.Item, bool, error) {
	if !t.interactive {
		fmt.Fprintln(t.out, warnStyle.Render(fmt.Sprintf("%s: no terminal to choose from %d item(s)", p.Title, len(p.Items))))
		return prompt.Item{}, false, nil
	}

	final, err := t.run(ctx, newPickModel(p, 72, 16))
	if err != nil {
		return prompt.Item{}, false, fmt.Errorf("pick %s: %w", p.ID, err)
	}
	m := final.(pickModel)
	return m.chosen, m.ok, nil
}

func (t *Terminal) Progress(title string) prompt.Progress {
	return newLineProgress(t.out, title, t.interactive)
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	return program.Run()
}

// printStatic writes a prompt that cannot be answered, so the message is not
// lost when running without a terminal.
func (t *Terminal) printStatic(p prompt.Prompt) {
	body := levelStyle(p.Level).Render(p.Message)
	if p.Detail != "" {
		body += "\n\n" + p.Detail
	}
	if p.Modal {
		fmt.Fprintln(t.out, modalStyle.Render(body))
		return
	}
	fmt.Fprintln(t.out, body)
	if len(p.Options) > 0 {
		fmt.Fprintln(t.out, dimStyle.Render(fmt.Sprintf("no terminal: treating %v as dismissed", p.Options)))
	}
}

func levelStyle(level prompt.Level) lipgloss.Style {
	switch level {
	case prompt.LevelWarn:
		return warnStyle
	case prompt.LevelError:
		return errStyle
	default:
		return infoStyle
	}
}
