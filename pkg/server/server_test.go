package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fable/pkg/inference"
	"fable/pkg/store/memory"
)

type fakeInferencer struct {
	out string
	err error
}

func (f *fakeInferencer) Infer(_ context.Context, _ *openai.ChatCompletionNewParams, _, _ string) (string, error) {
	return f.out, f.err
}
func (f *fakeInferencer) Name() string  { return "fake" }
func (f *fakeInferencer) Model() string { return "fake-model" }

type fakeVisioner struct {
	out        string
	err        error
	lastSchema any
}

func (f *fakeVisioner) AnalyzeImages(_ context.Context, _ string, _ []inference.Image, jsonSchema any) (string, error) {
	f.lastSchema = jsonSchema
	return f.out, f.err
}
func (f *fakeVisioner) Name() string  { return "fake-vision" }
func (f *fakeVisioner) Model() string { return "fake-vision-model" }

func newTestServer() *Server {
	mem := memory.New()
	return NewServer(context.Background(), mem, mem)
}

func doJSON(s *Server, method, path string, body string) *httptest.ResponseRecorder {
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set(echoHeaderContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestProjectCrudRoundTrip(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/projects", `{"name":"Starfall"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]any](t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	rec = doJSON(s, http.MethodGet, "/api/projects/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(s, http.MethodDelete, "/api/projects/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(s, http.MethodGet, "/api/projects/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationNamesTheMissingField(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/projects", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	rec = doJSON(s, http.MethodPost, "/api/characters", `{"name":"Mira"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "project_id is required")

	rec = doJSON(s, http.MethodPost, "/api/analyze/fingerprint", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "imageUrl is required")
}

func TestLinkAccessoryDuplicateConflicts(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/characters", `{"project_id":"p","name":"Mira"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	chID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodPost, "/api/characters/"+chID+"/outfits", `{"name":"cloak"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	outfitID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodPost, "/api/characters/"+chID+"/accessories", `{"name":"pin"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	accID := decode[map[string]any](t, rec)["id"].(string)

	body := `{"accessory_id":"` + accID + `"}`
	rec = doJSON(s, http.MethodPost, "/api/outfits/"+outfitID+"/accessories", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/outfits/"+outfitID+"/accessories", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCharacterSubResourceGetByID(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/characters", `{"project_id":"p","name":"Mira"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	chID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodPost, "/api/characters/"+chID+"/traits", `{"name":"stoic"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	traitID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodPost, "/api/characters/"+chID+"/outfits", `{"name":"cloak"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	outfitID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodPost, "/api/characters/"+chID+"/accessories", `{"name":"pin"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	accID := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(s, http.MethodGet, "/api/traits/"+traitID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stoic", decode[map[string]any](t, rec)["name"])

	rec = doJSON(s, http.MethodGet, "/api/outfits/"+outfitID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cloak", decode[map[string]any](t, rec)["name"])

	rec = doJSON(s, http.MethodGet, "/api/accessories/"+accID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pin", decode[map[string]any](t, rec)["name"])

	rec = doJSON(s, http.MethodGet, "/api/traits/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorderChoices(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/scenes", `{"project_id":"p","title":"crossroads"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	sceneID := decode[map[string]any](t, rec)["id"].(string)

	var ids []string
	for _, label := range []string{"left", "right", "wait"} {
		rec = doJSON(s, http.MethodPost, "/api/scenes/"+sceneID+"/choices", `{"label":"`+label+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode[map[string]any](t, rec)["id"].(string))
	}

	body, _ := json.Marshal(map[string]any{"choice_ids": []string{ids[2], ids[0], ids[1]}})
	rec = doJSON(s, http.MethodPatch, "/api/scenes/"+sceneID+"/choices", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	reordered := decode[[]map[string]any](t, rec)
	require.Len(t, reordered, 3)
	assert.Equal(t, "wait", reordered[0]["label"])
	assert.Equal(t, "left", reordered[1]["label"])
	assert.Equal(t, "right", reordered[2]["label"])
	for i, ch := range reordered {
		assert.Equal(t, float64(i), ch["order"])
	}

	// GET returns the same order.
	rec = doJSON(s, http.MethodGet, "/api/scenes/"+sceneID+"/choices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]map[string]any](t, rec)
	require.Len(t, listed, 3)
	assert.Equal(t, "wait", listed[0]["label"])
}

func TestReorderChoicesFlatRoute(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/scenes", `{"project_id":"p","title":"crossroads"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	sceneID := decode[map[string]any](t, rec)["id"].(string)

	var ids []string
	for _, label := range []string{"run", "hide"} {
		rec = doJSON(s, http.MethodPost, "/api/scenes/"+sceneID+"/choices", `{"label":"`+label+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode[map[string]any](t, rec)["id"].(string))
	}

	body, _ := json.Marshal(map[string]any{"scene_id": sceneID, "choice_ids": []string{ids[1], ids[0]}})
	rec = doJSON(s, http.MethodPatch, "/api/scene-choices", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	reordered := decode[[]map[string]any](t, rec)
	require.Len(t, reordered, 2)
	assert.Equal(t, "hide", reordered[0]["label"])
	assert.Equal(t, "run", reordered[1]["label"])

	// The body must name the scene on the flat route.
	body, _ = json.Marshal(map[string]any{"choice_ids": []string{ids[0], ids[1]}})
	rec = doJSON(s, http.MethodPatch, "/api/scene-choices", string(body))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "scene_id is required")
}

func TestTaskRegistryConflict(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/cli/tasks", `{"action":"start","sessionId":"cli-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	started := decode[map[string]any](t, rec)
	taskID, _ := started["taskId"].(string)
	require.NotEmpty(t, taskID)

	rec = doJSON(s, http.MethodPost, "/api/cli/tasks", `{"action":"start","sessionId":"cli-1"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	conflict := decode[map[string]any](t, rec)
	existing, ok := conflict["existing"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, taskID, existing["taskId"])

	rec = doJSON(s, http.MethodPost, "/api/cli/tasks", `{"action":"complete","taskId":"`+taskID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/cli/tasks", `{"action":"start","sessionId":"cli-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/cli/tasks", `{"action":"explode","sessionId":"cli-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProvidersHealthAlwaysOK(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodGet, "/api/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, false, status["text"]["available"])
	assert.Equal(t, false, status["vision"]["available"])
	assert.Equal(t, false, status["image"]["available"])
	assert.Equal(t, false, status["audio"]["available"])

	s.Text = &fakeInferencer{out: "ok"}
	rec = doJSON(s, http.MethodGet, "/api/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status = decode[map[string]map[string]any](t, rec)
	assert.Equal(t, true, status["text"]["available"])
	assert.Equal(t, "fake", status["text"]["name"])
}

func TestUnconfiguredProvidersReturn503(t *testing.T) {
	s := newTestServer()

	rec := doJSON(s, http.MethodPost, "/api/generate/character-prompt",
		`{"appearance":{"hair":"red"},"enhance":true}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/analyze/fingerprint", `{"imageUrl":"http://x/img.png"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/poster/select",
		`{"imageUrls":["http://x/a.png","http://x/b.png"]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/avatars/batch", `{"character_ids":["c1"]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPosterSelectRequiresTwoImages(t *testing.T) {
	s := newTestServer()
	s.Vision = &fakeVisioner{out: "{}"}

	rec := doJSON(s, http.MethodPost, "/api/poster/select", `{"imageUrls":["http://x/a.png"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "imageUrls")
}
