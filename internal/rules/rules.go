// Package rules holds the static decision data: per-type placement rules,
// lighting composition rules, named scene/lighting templates, and the parser
// vocabulary. Tables are loaded once at startup and read-only afterwards.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"scene-assistant/internal/scene"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// PlacementRule is the per-object-type placement policy. Zero value is a valid
// rule (ground height, no grouping preference).
type PlacementRule struct {
	DefaultHeight       float64 `yaml:"default_height"`
	PreferredGrouping   bool    `yaml:"preferred_grouping"`
	Spacing             float64 `yaml:"spacing"`
	ActsAsCenter        bool    `yaml:"acts_as_center"`
	RecommendedDistance float64 `yaml:"recommended_distance"`
	MinCount            int     `yaml:"min_count"`
	MaxCount            int     `yaml:"max_count"`
	LookAtCenter        bool    `yaml:"look_at_center"`
}

// LightingRules are scene-wide lighting composition defaults.
type LightingRules struct {
	ThreePointMinimum bool    `yaml:"three_point_minimum"`
	KeyIntensity      float64 `yaml:"key_intensity"`
	FillIntensity     float64 `yaml:"fill_intensity"`
	BackIntensity     float64 `yaml:"back_intensity"`
}

// TemplateObject is one object entry inside a template.
type TemplateObject struct {
	Type     string     `yaml:"type"`
	Position scene.Vec3 `yaml:"position"`
}

// TemplateLight is one light entry inside a template. Intensity and Color are
// optional; expansion fills defaults (1.0, opaque white).
type TemplateLight struct {
	Type      string      `yaml:"type"`
	Position  scene.Vec3  `yaml:"position"`
	Intensity *float64    `yaml:"intensity,omitempty"`
	Color     *scene.Vec3 `yaml:"color,omitempty"`
}

// TemplateCamera is one camera entry inside a template.
type TemplateCamera struct {
	Type     string     `yaml:"type"`
	Position scene.Vec3 `yaml:"position"`
}

// Template is a named bundle of object/light/camera entries that expands into
// creation actions. A template with no objects is a lighting template.
type Template struct {
	Objects []TemplateObject `yaml:"objects,omitempty"`
	Lights  []TemplateLight  `yaml:"lights,omitempty"`
	Cameras []TemplateCamera `yaml:"cameras,omitempty"`
}

// IntentTriggers pairs an intent tag with its trigger substrings. The slice of
// these in Vocabulary is scanned in declared order; order is precedence.
type IntentTriggers struct {
	Intent   string   `yaml:"intent"`
	Triggers []string `yaml:"triggers"`
}

// ScenePhrase maps a command phrase (e.g. "living room") to a template name.
type ScenePhrase struct {
	Phrase   string `yaml:"phrase"`
	Template string `yaml:"template"`
}

// Vocabulary is the keyword data the intent parser runs on.
type Vocabulary struct {
	ObjectTypes  []string         `yaml:"object_types"`
	Intents      []IntentTriggers `yaml:"intents"`
	ScenePhrases []ScenePhrase    `yaml:"scene_phrases"`
}

// Tables bundles all static rule data. Immutable after Load.
type Tables struct {
	Placement  map[string]PlacementRule `yaml:"placement"`
	Lighting   LightingRules            `yaml:"lighting"`
	Templates  map[string]Template      `yaml:"templates"`
	Vocabulary Vocabulary               `yaml:"vocabulary"`
}

// Load parses rule tables from the YAML file at path. An empty path loads the
// compiled-in defaults.
func Load(path string) (*Tables, error) {
	data := defaultsYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		data = b
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(t.Vocabulary.Intents) == 0 {
		return nil, fmt.Errorf("parse rules: vocabulary has no intent triggers")
	}
	return &t, nil
}

// PlacementFor returns the placement rule for an object type, or the zero rule
// when the type has no entry.
func (t *Tables) PlacementFor(objectType string) PlacementRule {
	return t.Placement[objectType]
}

// TemplateNames returns the template names split into scene templates (with
// objects) and lighting templates (lights only), each in sorted order.
func (t *Tables) TemplateNames() (scenes, lighting []string) {
	for name, tpl := range t.Templates {
		if len(tpl.Objects) > 0 {
			scenes = append(scenes, name)
		} else {
			lighting = append(lighting, name)
		}
	}
	sort.Strings(scenes)
	sort.Strings(lighting)
	return scenes, lighting
}
