package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Southclaws/fault/ftag"
	"github.com/gin-gonic/gin"
	"github.com/james-see/measureedit/pkg/config"
	"github.com/james-see/measureedit/pkg/converter"
	"github.com/james-see/measureedit/pkg/notation"
	"github.com/james-see/measureedit/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	s, err := NewScore(config.Default(), score.WithIDGenerator(notation.Sequential("e", 1)))
	require.NoError(t, err)
	return NewServer(s, converter.New(converter.DefaultOptions())).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	h := newTestServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])
	}
}

func TestGetScore(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/v1/score", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[ScoreView](t, w)
	assert.Equal(t, "4/4", view.TimeSignature)
	require.Len(t, view.Measures, 1)
	assert.Equal(t, "treble", view.Measures[0].Clef)
	assert.Equal(t, 4096, view.Measures[0].TotalTicks)
	assert.Len(t, view.Measures[0].Events, 4)
}

func TestAddNoteAndChangeDuration(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/v1/measures/0/notes", AddNoteRequest{EventID: "e1", Pitches: []string{"C/4", "E/4"}, Duration: "q"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m := decode[MeasureView](t, w)
	assert.Equal(t, []string{"C/4", "E/4"}, m.Events[0].Pitches)

	w = do(t, h, http.MethodPut, "/api/v1/measures/0/events/e1/duration", DurationRequest{Duration: "8"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m = decode[MeasureView](t, w)
	require.Len(t, m.Events, 5)
	assert.Equal(t, "8", m.Events[0].Duration)
	assert.Equal(t, "8r", m.Events[1].Duration)
}

func TestErrorMapping(t *testing.T) {
	invalid, notFound := string(ftag.InvalidArgument), string(ftag.NotFound)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"bad code", http.MethodPost, "/api/v1/measures/0/notes", AddNoteRequest{EventID: "e1", Pitches: []string{"C/4"}, Duration: "7"}, http.StatusBadRequest, invalid},
		{"bad pitch", http.MethodPost, "/api/v1/measures/0/notes", AddNoteRequest{EventID: "e1", Pitches: []string{"H/4"}, Duration: "q"}, http.StatusBadRequest, invalid},
		{"length mismatch", http.MethodPost, "/api/v1/measures/0/notes", AddNoteRequest{EventID: "e1", Pitches: []string{"C/4"}, Duration: "h"}, http.StatusNotFound, notFound},
		{"unknown measure", http.MethodPost, "/api/v1/measures/3/notes", AddNoteRequest{EventID: "e1", Pitches: []string{"C/4"}, Duration: "q"}, http.StatusNotFound, notFound},
		{"split past end", http.MethodPut, "/api/v1/measures/0/events/e4/duration", DurationRequest{Duration: "h"}, http.StatusUnprocessableEntity, invalid},
		{"unknown event", http.MethodPut, "/api/v1/measures/0/events/nope/duration", DurationRequest{Duration: "8"}, http.StatusNotFound, notFound},
		{"missing body field", http.MethodPut, "/api/v1/measures/0/events/e1/duration", map[string]string{}, http.StatusBadRequest, invalid},
		{"index not a number", http.MethodGet, "/api/v1/measures/x", nil, http.StatusBadRequest, invalid},
		{"negative index", http.MethodGet, "/api/v1/measures/-1", nil, http.StatusNotFound, notFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(t), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			body := decode[map[string]string](t, w)
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStatusFor(t *testing.T) {
	s, err := score.New(0, 0, 300, "4/4")
	require.NoError(t, err)
	_, err = s.Measure(9)
	assert.Equal(t, http.StatusNotFound, StatusFor(err))

	_, err = notation.Ticks("7")
	assert.Equal(t, http.StatusBadRequest, StatusFor(err))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}

func TestAddMeasure(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodPost, "/api/v1/measures", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	m := decode[MeasureView](t, w)
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, "treble", m.Clef)

	w = do(t, h, http.MethodGet, "/api/v1/measures/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMeasureText(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/v1/measures/0/text", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "|")
	assert.Contains(t, w.Body.String(), "qr")
}

func TestExport(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/v1/export/midi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/midi", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "MThd"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "score.mid")

	w = do(t, h, http.MethodGet, "/api/v1/export/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = do(t, h, http.MethodGet, "/api/v1/export/syx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/formats", nil)
	assert.Equal(t, []string{"midi", "pdf", "text"}, decode[map[string][]string](t, w)["formats"])
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/score", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Less(t, w.Code, 300)
}
