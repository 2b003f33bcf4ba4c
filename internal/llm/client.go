// Package llm is the optional external parser provider: chat-completion
// clients for Ollama, OpenAI, and Groq, a fallback chain, and a Provider that
// turns completions into parsed commands and suggestions. The service treats
// any failure here as "provider unavailable" and uses the rule-based parser.
package llm

import "context"

// Client sends a system+user prompt pair to a model and returns the reply
// text. Model is provider-specific (e.g. "llama3:latest", "gpt-4o-mini").
type Client interface {
	Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the OpenAI-compatible request shape, also accepted by Groq.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

// chatResponse is the OpenAI-compatible response shape.
type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}
