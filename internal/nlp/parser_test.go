package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-assistant/internal/rules"
	"scene-assistant/internal/scene"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	tables, err := rules.Load("")
	require.NoError(t, err)
	return NewParser(tables)
}

func TestParseIntent(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		command string
		intent  string
	}{
		{"add a chair", IntentCreateObject},
		{"create a living room", IntentCreateScene},
		{"add dramatic lighting to the scene", IntentCreateLight},
		{"add a camera in front of character", IntentCreateCamera},
		{"move the cube to the right", IntentModifyObject},
		{"destroy the sphere", IntentDeleteObject},
		{"save scene", IntentSaveScene},
		{"load scene", IntentLoadScene},
		{"frobnicate the widget", IntentUnknown},
		{"", IntentUnknown},
		{"   ", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			parsed := p.Parse(tt.command, nil)
			assert.Equal(t, tt.intent, parsed.Intent)
			assert.Equal(t, tt.command, parsed.OriginalText)
		})
	}
}

func TestParseVerbFallback(t *testing.T) {
	// A trimmed trigger table forces classification through the verb map.
	tables := &rules.Tables{
		Vocabulary: rules.Vocabulary{
			ObjectTypes: []string{"cube"},
			Intents: []rules.IntentTriggers{
				{Intent: IntentCreateScene, Triggers: []string{"create scene"}},
			},
		},
	}
	p := NewParser(tables)

	assert.Equal(t, IntentDeleteObject, p.Parse("delete the cube", nil).Intent)
	assert.Equal(t, IntentCreateObject, p.Parse("add something", nil).Intent)
	assert.Equal(t, IntentModifyObject, p.Parse("rotate it", nil).Intent)
	assert.Equal(t, IntentUnknown, p.Parse("the cube", nil).Intent)
}

func TestParseEntities(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("add a chair next to the table", nil)
	require.Len(t, parsed.Entities, 2)

	assert.Equal(t, Entity{Text: "chair", Type: EntityObjectType, Start: 6, End: 11}, parsed.Entities[0])
	assert.Equal(t, "table", parsed.Entities[1].Text)
	assert.Equal(t, parsed.Entities[1].Text, "add a chair next to the table"[parsed.Entities[1].Start:parsed.Entities[1].End])

	t.Run("unknown types are skipped", func(t *testing.T) {
		parsed := p.Parse("add a zeppelin", nil)
		assert.Empty(t, parsed.Entities)
	})
}

func TestParseParameters(t *testing.T) {
	p := newTestParser(t)

	t.Run("object type is the first entity", func(t *testing.T) {
		parsed := p.Parse("move the chair to the table", nil)
		assert.Equal(t, "chair", parsed.Parameters.ObjectType)
	})

	t.Run("position hint accumulates", func(t *testing.T) {
		parsed := p.Parse("put a cube above and to the right", nil)
		require.NotNil(t, parsed.Parameters.PositionHint)
		assert.Equal(t, scene.Vec3{1, 1, 0}, *parsed.Parameters.PositionHint)
	})

	t.Run("opposite directions cancel", func(t *testing.T) {
		parsed := p.Parse("put a cube left right", nil)
		require.NotNil(t, parsed.Parameters.PositionHint)
		assert.Equal(t, scene.Vec3{0, 0, 0}, *parsed.Parameters.PositionHint)
	})

	t.Run("no hint means nil", func(t *testing.T) {
		parsed := p.Parse("add a chair", nil)
		assert.Nil(t, parsed.Parameters.PositionHint)
	})

	t.Run("scene phrase resolves to scene type", func(t *testing.T) {
		parsed := p.Parse("create a living room", nil)
		assert.Equal(t, "living_room", parsed.Parameters.SceneType)
		assert.Empty(t, parsed.Parameters.Template)
	})

	t.Run("lighting phrase resolves to template", func(t *testing.T) {
		parsed := p.Parse("add dramatic lighting", nil)
		assert.Equal(t, "dramatic_lighting", parsed.Parameters.Template)
		assert.Empty(t, parsed.Parameters.SceneType)
	})

	t.Run("fallback never fills relative_to", func(t *testing.T) {
		parsed := p.Parse("add a chair to the left of the table", nil)
		assert.Empty(t, parsed.Parameters.RelativeTo)
	})
}

func TestParseWithDependencyTokenizer(t *testing.T) {
	tables, err := rules.Load("")
	require.NoError(t, err)
	p := NewParserWithTokenizer(tables, depTokenizer{})

	parsed := p.Parse("add a chair to the left of the table", nil)
	assert.Equal(t, "table", parsed.Parameters.RelativeTo)
}

// depTokenizer fakes a dependency-capable tokenizer: it runs the fallback and
// tags any token following "of" as its object.
type depTokenizer struct{}

func (depTokenizer) Tokenize(text string) []Token {
	tokens := FallbackTokenizer{}.Tokenize(text)
	for i := 1; i < len(tokens); i++ {
		if tokens[i-1].Text == "of" || (i >= 2 && tokens[i-1].Text == "the" && tokens[i-2].Text == "of") {
			tokens[i].Dep = "pobj"
			tokens[i].Head = "of"
		}
	}
	return tokens
}

func TestFallbackTokenizer(t *testing.T) {
	tokens := FallbackTokenizer{}.Tokenize("add  a chair")
	require.Len(t, tokens, 3)
	assert.Equal(t, Token{Text: "add", PartOfSpeech: "VERB", Lemma: "add", Start: 0}, tokens[0])
	assert.Equal(t, 5, tokens[1].Start)
	assert.Equal(t, 7, tokens[2].Start)
	assert.Empty(t, tokens[2].PartOfSpeech)

	assert.Empty(t, FallbackTokenizer{}.Tokenize("   "))
}

func TestSuggestions(t *testing.T) {
	p := newTestParser(t)

	t.Run("empty partial returns the full list", func(t *testing.T) {
		got := p.Suggestions("")
		assert.LessOrEqual(t, len(got), 5)
		assert.NotEmpty(t, got)
	})

	t.Run("filter is case-insensitive substring", func(t *testing.T) {
		got := p.Suggestions("LIVING")
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "living room")
	})

	t.Run("no match yields empty list", func(t *testing.T) {
		assert.Empty(t, p.Suggestions("xyzzy"))
	})
}
