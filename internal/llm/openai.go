package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const openAIBaseURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements Client using the OpenAI Chat Completions API.
type OpenAI struct {
	apiKey string
	client *http.Client
}

// NewOpenAI returns a Client that uses the OpenAI API with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{apiKey: apiKey, client: http.DefaultClient}
}

// Complete sends system and user messages to OpenAI and returns the reply.
func (c *OpenAI) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	return completeOpenAICompatible(ctx, c.client, openAIBaseURL, "openai", c.apiKey, model, systemPrompt, userMessage)
}

// completeOpenAICompatible posts a chat request to an OpenAI-compatible
// endpoint with Bearer auth and returns the first choice's content.
func completeOpenAICompatible(ctx context.Context, client *http.Client, url, name, apiKey, model, systemPrompt, userMessage string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("%s: API key not set", name)
	}
	reqBody := chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", name, resp.Status)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", name)
	}
	return out.Choices[0].Message.Content, nil
}
