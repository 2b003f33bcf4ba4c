package llm

import (
	"context"
	"errors"
)

// Fallback tries each client in order until one succeeds. Use when the
// preferred backend (e.g. a local Ollama) may be down but a hosted API is
// configured as well.
type Fallback struct {
	Clients []Client
}

// Complete calls each client in order and returns the first success. When all
// fail, the errors are joined.
func (f *Fallback) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	var errs []error
	for _, c := range f.Clients {
		s, err := c.Complete(ctx, model, systemPrompt, userMessage)
		if err == nil {
			return s, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", errors.New("fallback: no clients configured")
	}
	return "", errors.Join(errs...)
}
