package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintAnalyzesAndNormalizes(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("not-really-a-png"))
	}))
	defer img.Close()

	s := newTestServer()
	s.Vision = &fakeVisioner{out: "```json\n" +
		`{"colorTone":"black and white","composition":"close up","mood":"confused","lighting":"golden hour","style":"anime"}` +
		"\n```"}

	rec := doJSON(s, http.MethodPost, "/api/analyze/fingerprint", `{"imageUrl":"`+img.URL+`/a.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[fingerprintResp](t, rec)
	assert.Equal(t, "monochrome", resp.Fingerprint.ColorTone)
	assert.Equal(t, "close-up", resp.Fingerprint.Composition)
	assert.Equal(t, "dramatic", resp.Fingerprint.Mood)
	assert.Equal(t, "golden-hour", resp.Fingerprint.Lighting)
	assert.Equal(t, "anime", resp.Fingerprint.Style)
	assert.Equal(t, "fake-vision", resp.Provider)
}

func TestFingerprintPassesSchemaToVision(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("img"))
	}))
	defer img.Close()

	s := newTestServer()
	vision := &fakeVisioner{out: "{}"}
	s.Vision = vision

	rec := doJSON(s, http.MethodPost, "/api/analyze/fingerprint", `{"imageUrl":"`+img.URL+`/a.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, vision.lastSchema)
}

func TestFingerprintRepairsMalformedOutput(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("img"))
	}))
	defer img.Close()

	s := newTestServer()
	s.Vision = &fakeVisioner{out: `Sure! Here it is: {colorTone: "warm", mood "tense"`}
	s.Text = &fakeInferencer{out: `{"colorTone":"warm","mood":"tense"}`}

	rec := doJSON(s, http.MethodPost, "/api/analyze/fingerprint", `{"imageUrl":"`+img.URL+`/a.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[fingerprintResp](t, rec)
	assert.Equal(t, "warm", resp.Fingerprint.ColorTone)
	assert.Equal(t, "tense", resp.Fingerprint.Mood)
}

func TestFingerprintBadGatewayOnUnparseableVision(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("img"))
	}))
	defer img.Close()

	s := newTestServer()
	s.Vision = &fakeVisioner{out: "I see a lovely picture of a lake."}

	rec := doJSON(s, http.MethodPost, "/api/analyze/fingerprint", `{"imageUrl":"`+img.URL+`/a.png"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFingerprintFetchFailure(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer img.Close()

	s := newTestServer()
	s.Vision = &fakeVisioner{out: "{}"}

	rec := doJSON(s, http.MethodPost, "/api/analyze/fingerprint", `{"imageUrl":"`+img.URL+`/missing.png"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
