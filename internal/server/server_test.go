package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-assistant/internal/assistant"
	"scene-assistant/internal/rules"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tables, err := rules.Load("")
	require.NoError(t, err)
	svc := assistant.New(tables, assistant.Options{})
	srv := httptest.NewServer(New(svc, tables, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHandleCommand(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/command", `{"command": "add a chair"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var got commandResponse
	decode(t, resp, &got)
	assert.True(t, got.Success)
	require.Len(t, got.Actions, 1)
	assert.Equal(t, "create_object", got.Actions[0].Type)
	assert.Equal(t, "chair", got.Actions[0].ObjectType)
	assert.Equal(t, "Creating chair at optimal position", got.Message)

	t.Run("inline scene state is applied", func(t *testing.T) {
		body := `{"command": "add a chair", "scene_state": {"objects": [{"name": "table_1", "type": "table", "position": [0, 0, 0]}]}}`
		resp := postJSON(t, srv.URL+"/api/v1/command", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		comp := getComposition(t, srv)
		assert.EqualValues(t, 1, comp["object_count"])
	})

	t.Run("invalid body", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/command", `{"command": `)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/command")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHandleSceneUpdate(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/scene/update",
		`{"objects": [{"name": "cube_1", "type": "cube", "position": [2, 0, 0]}], "lights": [], "timestamp": 12.5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got statusResponse
	decode(t, resp, &got)
	assert.True(t, got.Success)

	t.Run("malformed update is a 400", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/scene/update", `{"objects": [{"type": "cube"}]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var got statusResponse
		decode(t, resp, &got)
		assert.False(t, got.Success)
	})
}

func TestHandleSuggestions(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/suggestions", `{"partial_command": "living"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got assistant.SuggestResult
	decode(t, resp, &got)
	require.Len(t, got.Suggestions, 1)
	assert.Contains(t, got.Suggestions[0], "living room")
}

func TestHandleTemplates(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/templates")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got templatesResponse
	decode(t, resp, &got)
	assert.Equal(t, []string{"living_room"}, got.Scenes)
	assert.Equal(t, []string{"dramatic_lighting"}, got.Lighting)
}

func TestHandleComposition(t *testing.T) {
	srv := newTestServer(t)

	comp := getComposition(t, srv)
	assert.Equal(t, "empty", comp["balance"])
	assert.Equal(t, "dark", comp["lighting_quality"])
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))

	var got healthResponse
	decode(t, resp, &got)
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "rule-based", got.LLM.Provider)
	assert.False(t, got.LLM.Available)
}

func getComposition(t *testing.T, srv *httptest.Server) map[string]any {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/v1/scene/composition")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comp map[string]any
	decode(t, resp, &comp)
	return comp
}
