package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosterSelectEndToEnd(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer img.Close()

	s := newTestServer()
	s.Vision = &fakeVisioner{out: `{"selectedIndex":1,"confidence":88,"reasoning":"better framing"}`}

	body := `{"imageUrls":["` + img.URL + `/a.jpg","` + img.URL + `/b.jpg"],"criteria":"most dramatic"}`
	rec := doJSON(s, http.MethodPost, "/api/poster/select", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[posterSelectResp](t, rec)
	assert.Equal(t, 1, resp.SelectedIndex)
	assert.Equal(t, 88, resp.Confidence)
	assert.Equal(t, "better framing", resp.Reasoning)
}

func TestPosterSelectRepairsMalformedOutput(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("img"))
	}))
	defer img.Close()

	s := newTestServer()
	s.Vision = &fakeVisioner{out: `The best one is {selectedIndex: 1, confidence 90`}
	s.Text = &fakeInferencer{out: `{"selectedIndex":1,"confidence":90}`}

	body := `{"imageUrls":["` + img.URL + `/a.jpg","` + img.URL + `/b.jpg"]}`
	rec := doJSON(s, http.MethodPost, "/api/poster/select", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[posterSelectResp](t, rec)
	assert.Equal(t, 1, resp.SelectedIndex)
	assert.Equal(t, 90, resp.Confidence)
}

func TestPosterSelectRateLimitMapsTo429(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("img"))
	}))
	defer img.Close()

	s := newTestServer()
	s.Vision = &fakeVisioner{err: errors.New("provider said: Rate limit exceeded")}

	body := `{"imageUrls":["` + img.URL + `/a.jpg","` + img.URL + `/b.jpg"]}`
	rec := doJSON(s, http.MethodPost, "/api/poster/select", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestParseSelectionResponse(t *testing.T) {
	index, confidence, reasoning := ParseSelectionResponse(
		`{"selectedIndex":2,"confidence":91,"reasoning":"strongest focal point"}`, 4)
	assert.Equal(t, 2, index)
	assert.Equal(t, 91, confidence)
	assert.Equal(t, "strongest focal point", reasoning)
}

func TestParseSelectionResponseDefaults(t *testing.T) {
	index, confidence, _ := ParseSelectionResponse(`{"reasoning":"no index given"}`, 3)
	assert.Equal(t, 0, index)
	assert.Equal(t, 70, confidence)

	index, confidence, _ = ParseSelectionResponse(`{"selectedIndex":1}`, 3)
	assert.Equal(t, 1, index)
	assert.Equal(t, 70, confidence)
}

func TestParseSelectionResponseClampsIndex(t *testing.T) {
	index, _, _ := ParseSelectionResponse(`{"selectedIndex":9,"confidence":80}`, 3)
	assert.Equal(t, 2, index)

	index, _, _ = ParseSelectionResponse(`{"selectedIndex":-4,"confidence":80}`, 3)
	assert.Equal(t, 0, index)
}

func TestParseSelectionResponseGarbage(t *testing.T) {
	index, confidence, reasoning := ParseSelectionResponse("I could not decide, sorry!", 2)
	assert.Equal(t, 0, index)
	assert.Equal(t, 70, confidence)
	assert.Empty(t, reasoning)
}

func TestParseSelectionResponseFencedJSON(t *testing.T) {
	raw := "```json\n{\"selectedIndex\":1,\"confidence\":85}\n```"
	index, confidence, _ := ParseSelectionResponse(raw, 2)
	assert.Equal(t, 1, index)
	assert.Equal(t, 85, confidence)
}
