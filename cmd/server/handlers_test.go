package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/himanishpuri/SurfaceEval/internal/eventlog"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/himanishpuri/SurfaceEval/pkg/surfaceeval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T, origins ...string) http.Handler {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	storage, err := surfaceeval.NewSQLiteStorage(filepath.Join(t.TempDir(), "server.sqlite3"))
	require.NoError(t, err)

	srv, err := NewServer(storage, []surfaceeval.Option{surfaceeval.WithNumRuns(2)}, &ServerConfig{AllowedOrigins: origins})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	return srv.setupRoutes()
}

// writeSliderRuns writes two fader runs that follow the default pattern at
// 90 bpm and returns their path template.
func writeSliderRuns(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	start := time.Date(2023, 5, 4, 10, 0, 0, 0, time.UTC)
	offsets := []int{0, 3000, 6000, 9000, 11000}
	levels := []float64{0.25, 0.75, 0.5, 1.0, 0}

	for run := 0; run < 2; run++ {
		f, err := os.Create(filepath.Join(dir, "slider_"+string(rune('0'+run))+".log"))
		require.NoError(t, err)

		i := 0
		rec := eventlog.NewRecorder(f, eventlog.WithClock(func() time.Time {
			ts := start.Add(time.Duration(offsets[i]) * time.Millisecond)
			i++
			return ts
		}))
		for _, v := range levels {
			require.NoError(t, rec.RecordAddress("/1/freq", v))
		}
		require.NoError(t, f.Close())
	}
	return filepath.Join(dir, "slider_{}.log")
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h := setupServer(t)

	rr := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedOrigins(t *testing.T) {
	h := setupServer(t, "http://a.example", "http://b.example")

	req := httptest.NewRequest(http.MethodOptions, "/api/evaluations", nil)
	req.Header.Set("Origin", "http://b.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://b.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRemoteHost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "[::1]:5120"
	assert.Equal(t, "::1", remoteHost(req))

	req.RemoteAddr = "10.0.0.7"
	assert.Equal(t, "10.0.0.7", remoteHost(req))

	req.Header.Set("X-Forwarded-For", " 192.0.2.4 , 10.0.0.1")
	assert.Equal(t, "192.0.2.4", remoteHost(req))
}

func TestEvaluationLifecycle(t *testing.T) {
	h := setupServer(t)
	tmpl := writeSliderRuns(t)

	rr := do(t, h, http.MethodPost, "/api/evaluations", EvaluateRequest{
		Name:     "slider",
		Device:   string(models.TouchSurface),
		Signal:   string(models.SignalFader),
		Template: tmpl,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created EvaluateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotNil(t, created.Evaluation)
	id := created.Evaluation.ID
	assert.NotEmpty(t, id)
	assert.True(t, created.Evaluation.Complete)
	assert.InDelta(t, 0, created.Evaluation.MeanError, 1e-12)
	assert.Empty(t, created.Errors)

	rr = do(t, h, http.MethodGet, "/api/evaluations", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list ListEvaluationsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	rr = do(t, h, http.MethodGet, "/api/evaluations/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/evaluations/"+id+"/runs/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var rs models.RunSeries
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rs))
	assert.Equal(t, 1, rs.RunIndex)
	assert.Equal(t, []float64{0.25, 0.75, 0.5, 1.0, 0}, rs.Expected)

	rr = do(t, h, http.MethodGet, "/api/evaluations/"+id+"/runs/7", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/evaluations/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/evaluations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEvaluateWithTempoOverride(t *testing.T) {
	h := setupServer(t)
	tmpl := writeSliderRuns(t)

	runs := 1
	rr := do(t, h, http.MethodPost, "/api/evaluations", EvaluateRequest{
		Device:   string(models.TouchSurface),
		Signal:   string(models.SignalFader),
		Template: tmpl,
		NumRuns:  &runs,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created EvaluateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 1, created.Evaluation.NumRuns)
}

func TestEvaluateErrors(t *testing.T) {
	h := setupServer(t)

	rr := do(t, h, http.MethodPost, "/api/evaluations", EvaluateRequest{Device: "theremin", Signal: "fader", Template: "x_{}.log"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/evaluations", EvaluateRequest{
		Device:   string(models.TouchSurface),
		Signal:   string(models.SignalPad),
		Template: filepath.Join(t.TempDir(), "missing_{}.log"),
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/evaluations", bytes.NewBufferString("{"))
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	rr = do(t, h, http.MethodPut, "/api/evaluations", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/evaluations/abc/runs/x", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
