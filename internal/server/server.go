// Package server exposes the assistant over HTTP, mirroring the engine-facing
// API: command interpretation, scene updates, suggestions, templates, health.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scene-assistant/internal/assistant"
	"scene-assistant/internal/decision"
	"scene-assistant/internal/rules"
	"scene-assistant/internal/scene"
	"scene-assistant/internal/scenestate"
)

// Server handles the HTTP surface of the assistant.
type Server struct {
	svc    *assistant.Service
	tables *rules.Tables
	log    *zap.Logger
}

// New returns a Server over the given service and rule tables.
func New(svc *assistant.Service, tables *rules.Tables, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, tables: tables, log: log}
}

// Handler returns the routed HTTP handler with request logging and panic
// recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/command", s.handleCommand)
	mux.HandleFunc("POST /api/v1/scene/update", s.handleSceneUpdate)
	mux.HandleFunc("POST /api/v1/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/v1/templates", s.handleTemplates)
	mux.HandleFunc("GET /api/v1/scene/composition", s.handleComposition)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.withRequest(mux)
}

// withRequest tags each request with a correlation ID, logs it, and converts
// panics into structured 500 responses so no defect escapes the API boundary.
func (s *Server) withRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		log := s.log.With(
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("handler panicked", zap.Any("panic", rec))
				writeJSON(w, http.StatusInternalServerError, statusResponse{
					Success: false,
					Message: "internal error",
				})
			}
		}()
		w.Header().Set("X-Request-ID", requestID)
		log.Debug("request received")
		next.ServeHTTP(w, r)
	})
}

type commandRequest struct {
	Command    string       `json:"command"`
	SceneState *scene.Delta `json:"scene_state,omitempty"`
}

type commandResponse struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Actions     []decision.Action `json:"actions"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Success: false, Message: "invalid JSON body: " + err.Error()})
		return
	}
	result, err := s.svc.Interpret(r.Context(), req.Command, req.SceneState)
	if err != nil {
		s.log.Error("interpret failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, statusResponse{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{
		Success:     true,
		Message:     result.Reasoning,
		Actions:     result.Actions,
		Suggestions: result.Suggestions,
	})
}

func (s *Server) handleSceneUpdate(w http.ResponseWriter, r *http.Request) {
	var delta scene.Delta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Success: false, Message: "invalid JSON body: " + err.Error()})
		return
	}
	if err := s.svc.ApplySceneUpdate(&delta); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scenestate.ErrMalformedUpdate) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, statusResponse{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Scene state updated"})
}

type suggestionRequest struct {
	PartialCommand string `json:"partial_command"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Success: false, Message: "invalid JSON body: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Suggest(r.Context(), req.PartialCommand))
}

type templatesResponse struct {
	Scenes   []string `json:"scenes"`
	Lighting []string `json:"lighting"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	scenes, lighting := s.tables.TemplateNames()
	writeJSON(w, http.StatusOK, templatesResponse{Scenes: scenes, Lighting: lighting})
}

func (s *Server) handleComposition(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Tracker().AnalyzeComposition())
}

type healthResponse struct {
	Status string    `json:"status"`
	LLM    healthLLM `json:"llm"`
}

type healthLLM struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Available bool   `json:"available"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	model := s.svc.ProviderModel()
	llm := healthLLM{Provider: "rule-based", Available: false}
	if model != "" {
		llm = healthLLM{Provider: "llm", Model: model, Available: true}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", LLM: llm})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
