package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviseSceneUpdatesContentAndHistory(t *testing.T) {
	s := newTestServer()
	s.Text = &fakeInferencer{out: "The rain fell in sheets across the valley."}

	rec := doJSON(s, http.MethodPost, "/api/scenes",
		`{"project_id":"p","title":"storm","content":"The rain fell gently."}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	sceneID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodPost, "/api/scenes/"+sceneID+"/revise",
		`{"prompt":"make the storm more intense"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[reviseResp](t, rec)
	assert.Equal(t, "The rain fell in sheets across the valley.", resp.Result)
	assert.NotEmpty(t, resp.Diff.Deltas)
	assert.Greater(t, resp.Similarity, 0.0)
	assert.Less(t, resp.Similarity, 1.0)
	assert.Len(t, resp.History, 1)

	// Whole-scene revision persists the new content.
	rec = doJSON(s, http.MethodGet, "/api/scenes/"+sceneID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	scene := decode[map[string]any](t, rec)
	assert.Equal(t, "The rain fell in sheets across the valley.", scene["content"])

	// And the revision list is reachable on its own.
	rec = doJSON(s, http.MethodGet, "/api/scenes/"+sceneID+"/revisions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]map[string]any](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "make the storm more intense", history[0]["prompt"])
}

func TestReviseSceneValidation(t *testing.T) {
	s := newTestServer()
	s.Text = &fakeInferencer{out: "x"}

	rec := doJSON(s, http.MethodPost, "/api/scenes/nope/revise", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "prompt is required")

	rec = doJSON(s, http.MethodPost, "/api/scenes/nope/revise", `{"prompt":"tighten"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviseSceneRejectsEmptySelection(t *testing.T) {
	s := newTestServer()
	s.Text = &fakeInferencer{out: "x"}

	rec := doJSON(s, http.MethodPost, "/api/scenes", `{"project_id":"p","title":"blank"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	sceneID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodPost, "/api/scenes/"+sceneID+"/revise", `{"prompt":"tighten"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
