package llm

import (
	"context"
	"net/http"
)

const groqBaseURL = "https://api.groq.com/openai/v1/chat/completions"

// Groq implements Client using Groq's OpenAI-compatible Chat Completions API.
type Groq struct {
	apiKey string
	client *http.Client
}

// NewGroq returns a Client that uses the Groq API with the given API key.
func NewGroq(apiKey string) *Groq {
	return &Groq{apiKey: apiKey, client: http.DefaultClient}
}

// Complete sends system and user messages to Groq and returns the reply.
func (c *Groq) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	return completeOpenAICompatible(ctx, c.client, groqBaseURL, "groq", c.apiKey, model, systemPrompt, userMessage)
}
