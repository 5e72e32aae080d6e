package prompt

import (
	"context"
	"fmt"
	"slices"
)

// WithAnswers answers prompts and picks whose ID appears in answers without
// asking. Every other interaction goes to inner.
func WithAnswers(inner Prompter, answers map[string]string) Prompter {
	filtered := make(map[string]string, len(answers))
	for id, answer := range answers {
		if answer != "" {
			filtered[id] = answer
		}
	}
	if len(filtered) == 0 {
		return inner
	}
	return &preset{Prompter: inner, answers: filtered}
}

type preset struct {
	Prompter
	answers map[string]string
}

func (p *preset) Ask(ctx context.Context, pr Prompt) (string, error) {
	answer, ok := p.answers[pr.ID]
	if !ok {
		return p.Prompter.Ask(ctx, pr)
	}
	if !slices.Contains(pr.Options, answer) {
		return "", fmt.Errorf("preset answer %q is not one of %v for %s", answer, pr.Options, pr.ID)
	}
	return answer, nil
}

func (p *preset) Select(ctx context.Context, pick Pick) (Item, bool, error) {
	answer, ok := p.answers[pick.ID]
	if !ok {
		return p.Prompter.Select(ctx, pick)
	}
	for _, item := range pick.Items {
		if item.Label == answer {
			return item, true, nil
		}
	}
	return Item{}, false, fmt.Errorf("preset %s %q is not available", pick.ID, answer)
}
