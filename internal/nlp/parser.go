// Package nlp turns a raw command string into an intent tag plus extracted
// entities and parameters, using only the rule tables. It is the always-on
// fallback behind any external language-model provider.
package nlp

import (
	"fmt"
	"strings"

	"scene-assistant/internal/rules"
	"scene-assistant/internal/scene"
)

// Intent tags produced by classification. The decision synthesizer dispatches
// on these; IntentUnknown is a defined terminal classification, not an error.
const (
	IntentCreateObject = "create_object"
	IntentModifyObject = "modify_object"
	IntentDeleteObject = "delete_object"
	IntentCreateCamera = "create_camera"
	IntentModifyCamera = "modify_camera"
	IntentCreateLight  = "create_light"
	IntentModifyLight  = "modify_light"
	IntentCreateScene  = "create_scene"
	IntentSaveScene    = "save_scene"
	IntentLoadScene    = "load_scene"
	IntentUnknown      = "unknown"
)

// EntityObjectType tags a token that matched the object-type vocabulary.
const EntityObjectType = "OBJECT_TYPE"

// Entity is a span of the command text tagged with a semantic category.
type Entity struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Parameters are the semantic values extracted from a command. Zero values
// mean "not present". RelativeTo is only filled by dependency-capable
// tokenizers; the fallback tokenizer never produces it.
type Parameters struct {
	ObjectType   string      `json:"object_type,omitempty"`
	PositionHint *scene.Vec3 `json:"position_hint,omitempty"`
	RelativeTo   string      `json:"relative_to,omitempty"`
	Template     string      `json:"template,omitempty"`
	SceneType    string      `json:"scene_type,omitempty"`
}

// ParsedCommand is the parser output: intent, entities, parameters, and the
// original text. Error carries an internal failure message; the intent is
// then IntentUnknown.
type ParsedCommand struct {
	Intent       string     `json:"intent"`
	Entities     []Entity   `json:"entities"`
	Parameters   Parameters `json:"parameters"`
	OriginalText string     `json:"original_text"`
	Tokens       []string   `json:"tokens,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// verbIntents maps a leading verb lemma to an intent when no trigger matched.
var verbIntents = map[string]string{
	"add":    IntentCreateObject,
	"create": IntentCreateObject,
	"make":   IntentCreateObject,
	"move":   IntentModifyObject,
	"rotate": IntentModifyObject,
	"scale":  IntentModifyObject,
	"remove": IntentDeleteObject,
	"delete": IntentDeleteObject,
}

// directionDeltas is the fixed word -> axis delta table for position hints.
// Multiple direction words accumulate additively.
var directionDeltas = map[string]scene.Vec3{
	"front":  {0, 0, 1},
	"behind": {0, 0, -1},
	"left":   {-1, 0, 0},
	"right":  {1, 0, 0},
	"above":  {0, 1, 0},
	"below":  {0, -1, 0},
}

// defaultSuggestions is the static suggestion list served when no external
// provider is available.
var defaultSuggestions = []string{
	"Add a camera in front of character",
	"Add dramatic lighting to the scene",
	"Create a living room with furniture",
	"Move the chair to the left of the table",
	"Add a table in the center",
	"Place a light above the character",
}

// Parser classifies commands against the vocabulary in the rule tables.
// Stateless per call; safe for concurrent use.
type Parser struct {
	tables  *rules.Tables
	tok     Tokenizer
	objects map[string]bool
}

// NewParser returns a Parser over the given tables using the rule-based
// fallback tokenizer.
func NewParser(tables *rules.Tables) *Parser {
	return NewParserWithTokenizer(tables, FallbackTokenizer{})
}

// NewParserWithTokenizer returns a Parser using the given tokenizer, e.g. one
// backed by a richer linguistic model that fills Dep/Head.
func NewParserWithTokenizer(tables *rules.Tables, tok Tokenizer) *Parser {
	objects := make(map[string]bool, len(tables.Vocabulary.ObjectTypes))
	for _, t := range tables.Vocabulary.ObjectTypes {
		objects[t] = true
	}
	return &Parser{tables: tables, tok: tok, objects: objects}
}

// Parse interprets a command. It never fails: any internal problem yields
// intent "unknown" with the message in Error. The optional snapshot is
// accepted for parity with richer parsers but unused by the rule-based path.
func (p *Parser) Parse(command string, snap *scene.Snapshot) (parsed *ParsedCommand) {
	parsed = &ParsedCommand{Intent: IntentUnknown, OriginalText: command}
	defer func() {
		if r := recover(); r != nil {
			parsed.Intent = IntentUnknown
			parsed.Error = fmt.Sprintf("parse failed: %v", r)
		}
	}()

	lower := strings.ToLower(strings.TrimSpace(command))
	if lower == "" {
		return parsed
	}
	tokens := p.tok.Tokenize(lower)
	for _, t := range tokens {
		parsed.Tokens = append(parsed.Tokens, t.Text)
	}

	parsed.Intent = p.classify(lower, tokens)
	parsed.Entities = p.extractEntities(tokens)
	parsed.Parameters = p.extractParameters(lower, tokens, parsed.Entities)
	return parsed
}

// classify is first-match-wins over the ordered trigger table, then the verb
// fallback. The trigger table order is precedence and must not be reordered.
func (p *Parser) classify(lower string, tokens []Token) string {
	for _, it := range p.tables.Vocabulary.Intents {
		for _, trigger := range it.Triggers {
			if strings.Contains(lower, trigger) {
				return it.Intent
			}
		}
	}
	for _, t := range tokens {
		if t.PartOfSpeech != "VERB" {
			continue
		}
		if intent, ok := verbIntents[t.Lemma]; ok {
			return intent
		}
		break
	}
	return IntentUnknown
}

// extractEntities tags tokens that match the object-type vocabulary. Unknown
// types are simply skipped. Entity extraction is independent of intent.
func (p *Parser) extractEntities(tokens []Token) []Entity {
	var entities []Entity
	for _, t := range tokens {
		if p.objects[t.Text] {
			entities = append(entities, Entity{
				Text:  t.Text,
				Type:  EntityObjectType,
				Start: t.Start,
				End:   t.Start + len(t.Text),
			})
		}
	}
	return entities
}

func (p *Parser) extractParameters(lower string, tokens []Token, entities []Entity) Parameters {
	var params Parameters

	for _, e := range entities {
		if e.Type == EntityObjectType {
			params.ObjectType = e.Text
			break
		}
	}

	for _, t := range tokens {
		if delta, ok := directionDeltas[t.Text]; ok {
			if params.PositionHint == nil {
				params.PositionHint = &scene.Vec3{}
			}
			*params.PositionHint = params.PositionHint.Add(delta)
		}
	}

	// Dependency relation "<x> of <obj>": only tokenizers that fill Dep/Head
	// can produce this; the fallback path leaves RelativeTo empty.
	for _, t := range tokens {
		if t.Dep == "pobj" && t.Head == "of" {
			params.RelativeTo = t.Text
		}
	}

	// Template phrases resolve to a scene type when the named template builds
	// objects, and to a lighting template otherwise.
	for _, sp := range p.tables.Vocabulary.ScenePhrases {
		if !strings.Contains(lower, sp.Phrase) {
			continue
		}
		if tpl, ok := p.tables.Templates[sp.Template]; ok && len(tpl.Objects) > 0 {
			params.SceneType = sp.Template
		} else {
			params.Template = sp.Template
		}
		break
	}

	return params
}

// Suggestions filters the static suggestion list by case-insensitive substring
// containment of partial, capped at 5. An empty partial returns the full list.
func (p *Parser) Suggestions(partial string) []string {
	out := make([]string, 0, 5)
	needle := strings.ToLower(partial)
	for _, s := range defaultSuggestions {
		if needle == "" || strings.Contains(strings.ToLower(s), needle) {
			out = append(out, s)
			if len(out) == 5 {
				break
			}
		}
	}
	return out
}
