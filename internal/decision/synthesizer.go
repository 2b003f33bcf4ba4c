// Package decision turns an intent plus merged context into an ordered list
// of concrete scene-mutation actions with a human-readable rationale. Every
// handler is a pure function of intent, context, and the rule tables.
package decision

import (
	"errors"
	"fmt"

	"scene-assistant/internal/nlp"
	"scene-assistant/internal/rules"
	"scene-assistant/internal/scene"
)

// Action types emitted by the synthesizer. The caller applies them to the
// real engine; this core never persists them.
const (
	ActionCreateObject = "create_object"
	ActionModifyObject = "modify_object"
	ActionCreateLight  = "create_light"
	ActionCreateCamera = "create_camera"
)

// ErrNotInitialized is returned when the synthesizer has no rule tables.
var ErrNotInitialized = errors.New("decision synthesizer not initialized")

// Action is one scene mutation. Only fields relevant to Type are set; vector
// fields are pointers so absent values are omitted on the wire.
type Action struct {
	Type       string      `json:"type"`
	ObjectType string      `json:"object_type,omitempty"`
	ObjectName string      `json:"object_name,omitempty"`
	LightType  string      `json:"light_type,omitempty"`
	Position   *scene.Vec3 `json:"position,omitempty"`
	Rotation   *scene.Vec3 `json:"rotation,omitempty"`
	Scale      *scene.Vec3 `json:"scale,omitempty"`
	LookAt     *scene.Vec3 `json:"look_at,omitempty"`
	FOV        float64     `json:"fov,omitempty"`
	Intensity  float64     `json:"intensity,omitempty"`
	Color      *scene.Vec3 `json:"color,omitempty"`
	Property   string      `json:"property,omitempty"`
	Value      *scene.Vec3 `json:"value,omitempty"`
}

// Context is the merged input to Decide: parsed command parameters plus a
// single snapshot read of the scene taken at the start of the call.
type Context struct {
	ObjectType   string
	PositionHint *scene.Vec3
	RelativeTo   string
	ObjectName   string
	Property     string
	Value        *scene.Vec3
	Template     string
	SceneType    string
	Scene        *scene.Snapshot
}

// Decision is the synthesizer output: ordered actions and the reasoning that
// produced them. Unknown intents and unknown templates yield empty actions
// with an explanatory reasoning string; neither is an error.
type Decision struct {
	Actions   []Action `json:"actions"`
	Reasoning string   `json:"reasoning"`
}

// positionHintScale converts a unit direction hint into world units.
const positionHintScale = 2.0

// cameraFOV is the fixed field of view for synthesized cameras, in degrees.
const cameraFOV = 50.0

// Synthesizer dispatches intents to placement handlers over the rule tables.
// Stateless per call; safe for concurrent use.
type Synthesizer struct {
	tables *rules.Tables
}

// New returns a Synthesizer over the given tables.
func New(tables *rules.Tables) *Synthesizer {
	return &Synthesizer{tables: tables}
}

// Decide maps an intent and context to a decision. Fails only when the rule
// tables were never loaded.
func (s *Synthesizer) Decide(intent string, ctx Context) (Decision, error) {
	if s == nil || s.tables == nil {
		return Decision{}, ErrNotInitialized
	}
	switch intent {
	case nlp.IntentCreateObject:
		return s.createObject(ctx), nil
	case nlp.IntentModifyObject:
		return s.modifyObject(ctx), nil
	case nlp.IntentCreateCamera:
		return s.createCamera(ctx), nil
	case nlp.IntentCreateLight:
		return s.createLight(ctx), nil
	case nlp.IntentCreateScene:
		return s.createScene(ctx), nil
	default:
		return Decision{Actions: []Action{}, Reasoning: "Unknown intent"}, nil
	}
}

// createObject places one object: base position (0, default height, 0), plus
// the position hint scaled into world units when present.
func (s *Synthesizer) createObject(ctx Context) Decision {
	objectType := ctx.ObjectType
	if objectType == "" {
		objectType = "cube"
	}
	rule := s.tables.PlacementFor(objectType)
	position := scene.Vec3{0, rule.DefaultHeight, 0}
	if ctx.PositionHint != nil {
		position = position.Add(ctx.PositionHint.Scale(positionHintScale))
	}
	return Decision{
		Actions: []Action{{
			Type:       ActionCreateObject,
			ObjectType: objectType,
			Position:   &position,
			Rotation:   &scene.Vec3{},
			Scale:      &scene.Vec3{1, 1, 1},
		}},
		Reasoning: fmt.Sprintf("Creating %s at optimal position", objectType),
	}
}

// modifyObject passes the request through untouched; validation against the
// live scene is the engine's concern, not this layer's.
func (s *Synthesizer) modifyObject(ctx Context) Decision {
	property := ctx.Property
	if property == "" {
		property = "position"
	}
	value := ctx.Value
	if value == nil {
		value = &scene.Vec3{}
	}
	return Decision{
		Actions: []Action{{
			Type:       ActionModifyObject,
			ObjectName: ctx.ObjectName,
			Property:   property,
			Value:      value,
		}},
		Reasoning: "Modifying object as requested",
	}
}

func (s *Synthesizer) createCamera(ctx Context) Decision {
	rule := s.tables.PlacementFor("camera")
	position := scene.Vec3{0, rule.DefaultHeight, rule.RecommendedDistance}
	lookAt := scene.Vec3{}
	return Decision{
		Actions: []Action{{
			Type:     ActionCreateCamera,
			Position: &position,
			LookAt:   &lookAt,
			FOV:      cameraFOV,
		}},
		Reasoning: "Placing camera for optimal framing",
	}
}

// createLight expands a lighting template when the context names one with
// lights; otherwise it falls back to a single default directional light.
func (s *Synthesizer) createLight(ctx Context) Decision {
	if tpl, ok := s.tables.Templates[ctx.Template]; ok && len(tpl.Lights) > 0 {
		actions := make([]Action, 0, len(tpl.Lights))
		for _, l := range tpl.Lights {
			actions = append(actions, lightAction(l))
		}
		return Decision{
			Actions:   actions,
			Reasoning: fmt.Sprintf("Applied %s lighting template", ctx.Template),
		}
	}
	position := scene.Vec3{2, 2, 2}
	white := scene.Vec3{1, 1, 1}
	return Decision{
		Actions: []Action{{
			Type:      ActionCreateLight,
			LightType: "directional",
			Position:  &position,
			Intensity: 1.0,
			Color:     &white,
		}},
		Reasoning: "Creating default directional light",
	}
}

// createScene expands a scene template into creation actions, objects before
// lights before cameras. The ordering is significant: the engine needs
// objects present before lights aim at them and cameras frame them.
func (s *Synthesizer) createScene(ctx Context) Decision {
	sceneType := ctx.SceneType
	if sceneType == "" {
		sceneType = "living_room"
	}
	tpl, ok := s.tables.Templates[sceneType]
	if !ok {
		return Decision{
			Actions:   []Action{},
			Reasoning: fmt.Sprintf("Template %s not found", sceneType),
		}
	}
	actions := make([]Action, 0, len(tpl.Objects)+len(tpl.Lights)+len(tpl.Cameras))
	for _, o := range tpl.Objects {
		pos := o.Position
		actions = append(actions, Action{
			Type:       ActionCreateObject,
			ObjectType: o.Type,
			Position:   &pos,
		})
	}
	for _, l := range tpl.Lights {
		actions = append(actions, lightAction(l))
	}
	for _, c := range tpl.Cameras {
		pos := c.Position
		actions = append(actions, Action{
			Type:     ActionCreateCamera,
			Position: &pos,
		})
	}
	return Decision{
		Actions:   actions,
		Reasoning: fmt.Sprintf("Applied %s scene template", sceneType),
	}
}

func lightAction(l rules.TemplateLight) Action {
	pos := l.Position
	intensity := 1.0
	if l.Intensity != nil {
		intensity = *l.Intensity
	}
	color := scene.Vec3{1, 1, 1}
	if l.Color != nil {
		color = *l.Color
	}
	return Action{
		Type:      ActionCreateLight,
		LightType: l.Type,
		Position:  &pos,
		Intensity: intensity,
		Color:     &color,
	}
}
