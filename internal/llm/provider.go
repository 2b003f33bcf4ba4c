package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"scene-assistant/internal/nlp"
	"scene-assistant/internal/scene"
)

// systemPrompt frames the model as a command parser for the 3D scene editor.
// The reply contract is a single JSON object; extractJSONObject tolerates
// models that wrap it in markdown or prose anyway.
const systemPrompt = `You are an AI assistant for a 3D movie creation tool.
Your job is to understand natural language commands and convert them into structured JSON.

Available object types: cube, sphere, pyramid, chair, table, sofa, camera, light
Available intents: create_object, modify_object, delete_object, create_camera, create_light, create_scene
Position format: [x, y, z] where y is up

Reply with exactly one JSON object of the form:
{"intent": "<intent>", "parameters": {"object_type": "...", "scene_type": "...", "template": "...", "relative_to": "...", "position_hint": [x, y, z]}}
Omit parameters that do not apply.

Examples:
- "Add a camera in front of character" -> {"intent": "create_camera", "parameters": {}}
- "Create a living room" -> {"intent": "create_scene", "parameters": {"scene_type": "living_room"}}
- "Add a chair to the left of the table" -> {"intent": "create_object", "parameters": {"object_type": "chair", "relative_to": "table", "position_hint": [-1, 0, 0]}}

Always respond with valid JSON only. No explanations.`

// Provider wraps a Client into the narrow parse/suggest contract the service
// consumes. Any transport or output-shape failure is returned as an error;
// the caller falls back to the rule-based parser.
type Provider struct {
	client Client
	model  string
}

// NewProvider returns a Provider that parses with the given client and model.
func NewProvider(client Client, model string) *Provider {
	return &Provider{client: client, model: model}
}

// Model returns the configured model name.
func (p *Provider) Model() string {
	return p.model
}

// Probe sends a minimal request to check the backend is reachable. Used once
// at startup; a failed probe demotes the service to rule-based parsing.
func (p *Provider) Probe(ctx context.Context) error {
	_, err := p.client.Complete(ctx, p.model, "Reply with the word ok.", "ok")
	return err
}

// parsedPayload is the JSON shape the model is asked to produce.
type parsedPayload struct {
	Intent     string `json:"intent"`
	Parameters struct {
		ObjectType   string      `json:"object_type"`
		SceneType    string      `json:"scene_type"`
		Template     string      `json:"template"`
		RelativeTo   string      `json:"relative_to"`
		PositionHint *[3]float64 `json:"position_hint"`
	} `json:"parameters"`
	Entities []nlp.Entity `json:"entities"`
}

// ParseCommand asks the model to parse command against the scene context and
// maps the reply into a ParsedCommand.
func (p *Provider) ParseCommand(ctx context.Context, command string, snap *scene.Snapshot) (*nlp.ParsedCommand, error) {
	user := fmt.Sprintf("Command: %q\n\nScene context: %s\n\nParse this command into JSON with intent and parameters.",
		command, sceneContextJSON(snap))
	reply, err := p.client.Complete(ctx, p.model, systemPrompt, user)
	if err != nil {
		return nil, err
	}
	obj, err := extractJSONObject(reply)
	if err != nil {
		return nil, fmt.Errorf("provider reply: %w", err)
	}
	var payload parsedPayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, fmt.Errorf("provider reply: %w", err)
	}
	if payload.Intent == "" {
		return nil, fmt.Errorf("provider reply: missing intent")
	}
	parsed := &nlp.ParsedCommand{
		Intent:       payload.Intent,
		Entities:     payload.Entities,
		OriginalText: command,
		Parameters: nlp.Parameters{
			ObjectType: payload.Parameters.ObjectType,
			SceneType:  payload.Parameters.SceneType,
			Template:   payload.Parameters.Template,
			RelativeTo: payload.Parameters.RelativeTo,
		},
	}
	if payload.Parameters.PositionHint != nil {
		hint := scene.Vec3(*payload.Parameters.PositionHint)
		parsed.Parameters.PositionHint = &hint
	}
	return parsed, nil
}

// GenerateSuggestions asks the model for up to five command suggestions.
func (p *Provider) GenerateSuggestions(ctx context.Context, partial string, snap *scene.Snapshot) ([]string, error) {
	user := fmt.Sprintf("Given the partial command: %q\nAnd scene context: %s\n\nSuggest 5 complete commands the user might want to execute.\nReturn as a JSON array of strings.",
		partial, sceneContextJSON(snap))
	reply, err := p.client.Complete(ctx, p.model, systemPrompt, user)
	if err != nil {
		return nil, err
	}
	arr, err := extractJSONArray(reply)
	if err != nil {
		return nil, fmt.Errorf("provider reply: %w", err)
	}
	var suggestions []string
	if err := json.Unmarshal([]byte(arr), &suggestions); err != nil {
		return nil, fmt.Errorf("provider reply: %w", err)
	}
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions, nil
}

func sceneContextJSON(snap *scene.Snapshot) string {
	if snap == nil {
		return "empty scene"
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return "empty scene"
	}
	return string(b)
}

var codeFenceRe = regexp.MustCompile("^```\\w*\\n?")

// stripFences removes a surrounding markdown code block, if present.
func stripFences(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		reply = codeFenceRe.ReplaceAllString(reply, "")
		reply = strings.TrimSuffix(strings.TrimSpace(reply), "```")
		reply = strings.TrimSpace(reply)
	}
	return reply
}

// extractJSONObject returns the first balanced {...} in reply, tolerating
// markdown fences and text before or after.
func extractJSONObject(reply string) (string, error) {
	return extractBalanced(stripFences(reply), '{', '}')
}

// extractJSONArray returns the first balanced [...] in reply.
func extractJSONArray(reply string) (string, error) {
	return extractBalanced(stripFences(reply), '[', ']')
}

func extractBalanced(s string, open, closing rune) (string, error) {
	start := strings.IndexRune(s, open)
	if start < 0 {
		return "", fmt.Errorf("no JSON %c...%c in response", open, closing)
	}
	s = s[start:]
	depth := 0
	inString := false
	escaped := false
	for i, c := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[:i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON in response")
}
