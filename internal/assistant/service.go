// Package assistant wires the parser, tracker, synthesizer, and optional
// external provider into the three public operations: Interpret,
// ApplySceneUpdate, and Suggest. The Service is constructed once at startup
// and passed to every caller; there are no package-level instances.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"scene-assistant/internal/decision"
	"scene-assistant/internal/nlp"
	"scene-assistant/internal/rules"
	"scene-assistant/internal/scene"
	"scene-assistant/internal/scenestate"
)

// ErrNotInitialized is returned when an operation is called on a Service that
// was not built with New.
var ErrNotInitialized = errors.New("assistant not initialized")

// defaultProviderTimeout bounds every external provider call when the
// configured timeout is zero.
const defaultProviderTimeout = 10 * time.Second

// completionPhrases is the fixed table for prefix completions, in serving
// order. At most three matches are returned.
var completionPhrases = []string{
	"Add a table",
	"Add a chair",
	"Add a light",
	"Add a camera",
	"Create a living room",
	"Move the chair to the left",
	"Save the scene",
}

// InterpretResult is the outcome of one command interpretation. It is always
// well-formed: a failed interpretation has empty actions and a reasoning
// string explaining why.
type InterpretResult struct {
	Actions     []decision.Action `json:"actions"`
	Reasoning   string            `json:"reasoning"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// SuggestResult holds suggestion and completion lists for a partial command.
type SuggestResult struct {
	Suggestions []string `json:"suggestions"`
	Completions []string `json:"completions"`
}

// Provider is the narrow contract an external parser must satisfy. Absence,
// errors, or malformed output are all treated as "not available" and the
// rule-based parser takes over.
type Provider interface {
	ParseCommand(ctx context.Context, command string, snap *scene.Snapshot) (*nlp.ParsedCommand, error)
	GenerateSuggestions(ctx context.Context, partial string, snap *scene.Snapshot) ([]string, error)
	Model() string
}

// Service is the assistant core. Parser and synthesizer are stateless per
// call; the tracker is the only shared mutable state.
type Service struct {
	parser          *nlp.Parser
	tracker         *scenestate.Tracker
	synth           *decision.Synthesizer
	provider        Provider
	providerTimeout time.Duration
	log             *zap.Logger
}

// Options configures optional Service collaborators.
type Options struct {
	// Provider is the external parser; nil means rule-based only.
	Provider Provider
	// ProviderTimeout bounds each provider call; zero means a 10s default.
	ProviderTimeout time.Duration
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// New builds a Service over the given rule tables.
func New(tables *rules.Tables, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &Service{
		parser:          nlp.NewParser(tables),
		tracker:         scenestate.New(),
		synth:           decision.New(tables),
		provider:        opts.Provider,
		providerTimeout: timeout,
		log:             log,
	}
}

// Tracker exposes the scene state tracker for composition queries.
func (s *Service) Tracker() *scenestate.Tracker {
	return s.tracker
}

// ProviderModel returns the external provider's model name, or "" when the
// service is rule-based only.
func (s *Service) ProviderModel() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Model()
}

// DisableProvider drops the external provider, e.g. after a failed startup
// probe. Subsequent calls use the rule-based parser only.
func (s *Service) DisableProvider() {
	s.provider = nil
}

// Interpret parses a command, decides actions against the current scene, and
// attaches suggestions. An optional delta updates the tracker before the
// single snapshot read. The result is well-formed even when interpretation
// fails; only a missing Service is an error.
func (s *Service) Interpret(ctx context.Context, command string, delta *scene.Delta) (InterpretResult, error) {
	if s == nil || s.parser == nil {
		return InterpretResult{}, ErrNotInitialized
	}
	if delta != nil {
		if err := s.tracker.Update(delta); err != nil {
			s.log.Warn("scene context rejected", zap.Error(err))
		}
	}
	snap, err := s.tracker.Snapshot()
	if err != nil {
		return InterpretResult{}, err
	}

	parsed := s.parse(ctx, command, snap)
	dctx := mergeContext(parsed.Parameters, snap)
	dec, err := s.synth.Decide(parsed.Intent, dctx)
	if err != nil {
		return InterpretResult{}, err
	}
	s.log.Info("command interpreted",
		zap.String("intent", parsed.Intent),
		zap.Int("actions", len(dec.Actions)))

	return InterpretResult{
		Actions:     dec.Actions,
		Reasoning:   dec.Reasoning,
		Suggestions: s.suggestions(ctx, command, snap),
	}, nil
}

// parse tries the external provider first within the bounded timeout, then
// the rule-based parser. Provider failure is recovered here and never
// surfaces to the caller.
func (s *Service) parse(ctx context.Context, command string, snap *scene.Snapshot) *nlp.ParsedCommand {
	if s.provider != nil {
		pctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
		parsed, err := s.provider.ParseCommand(pctx, command, snap)
		if err == nil {
			return parsed
		}
		s.log.Warn("provider parse failed, using rule-based parser", zap.Error(err))
	}
	return s.parser.Parse(command, snap)
}

func (s *Service) suggestions(ctx context.Context, command string, snap *scene.Snapshot) []string {
	if s.provider != nil {
		pctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
		if suggestions, err := s.provider.GenerateSuggestions(pctx, command, snap); err == nil {
			return suggestions
		}
	}
	return s.parser.Suggestions(command)
}

// mergeContext combines parsed parameters with the snapshot read taken at the
// start of the call.
func mergeContext(params nlp.Parameters, snap *scene.Snapshot) decision.Context {
	return decision.Context{
		ObjectType:   params.ObjectType,
		PositionHint: params.PositionHint,
		RelativeTo:   params.RelativeTo,
		Template:     params.Template,
		SceneType:    params.SceneType,
		Scene:        snap,
	}
}

// ApplySceneUpdate feeds an engine scene update into the tracker.
func (s *Service) ApplySceneUpdate(delta *scene.Delta) error {
	if s == nil || s.tracker == nil {
		return ErrNotInitialized
	}
	if err := s.tracker.Update(delta); err != nil {
		return err
	}
	snap, err := s.tracker.Snapshot()
	if err != nil {
		return err
	}
	s.log.Info("scene state updated",
		zap.Int("objects", len(snap.Objects)),
		zap.Int("lights", len(snap.Lights)),
		zap.Int("cameras", len(snap.Cameras)))
	return nil
}

// Suggest returns provider or static suggestions for a partial command plus
// prefix completions from the fixed phrase table (case-insensitive, at most
// three, table order).
func (s *Service) Suggest(ctx context.Context, partial string) SuggestResult {
	snap, err := s.tracker.Snapshot()
	if err != nil {
		snap = nil
	}
	completions := make([]string, 0, 3)
	prefix := strings.ToLower(partial)
	for _, phrase := range completionPhrases {
		if strings.HasPrefix(strings.ToLower(phrase), prefix) {
			completions = append(completions, phrase)
			if len(completions) == 3 {
				break
			}
		}
	}
	return SuggestResult{
		Suggestions: s.suggestions(ctx, partial, snap),
		Completions: completions,
	}
}
