// Package prompt defines the user-interaction surface the workflows talk to.
package prompt

import "context"

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Prompt is a notification with a fixed set of buttons.
type Prompt struct {
	// ID names the decision point so preset answers can target it.
	ID      string
	Level   Level
	Message string
	// Detail is shown under the message in modal prompts.
	Detail  string
	Modal   bool
	Options []string
}

// Item is one entry in a quick-pick list.
type Item struct {
	Label       string
	Description string
}

// Pick is a single-choice selection list.
type Pick struct {
	ID          string
	Title       string
	Placeholder string
	Items       []Item
}

// Progress reports incremental progress for one long-running scope.
type Progress interface {
	// Report advances the indicator by increment percent and shows message.
	Report(increment float64, message string)
	Done()
}

// Prompter is implemented by the terminal UI and by test fakes.
type Prompter interface {
	// Ask shows p and blocks until the user picks one of p.Options. An empty
	// answer means the prompt was dismissed.
	Ask(ctx context.Context, p Prompt) (string, error)
	Notify(level Level, message string)
	// Select returns ok=false when the user cancels.
	Select(ctx context.Context, p Pick) (Item, bool, error)
	Progress(title string) Progress
}
