package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnate/internal/config"
	"magnate/internal/econ"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := econ.NewSession(econ.DefaultCatalog(logger), logger)
	session.SetEventProbability(0)
	return New(config.APIConfig{SaveSlot: "test"}, logger, session, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogListsTemplates(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/v1/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[map[string][]catalogTemplate](t, rec)
	require.Len(t, body["templates"], 10)
	assert.Equal(t, "Coffee Collective", body["templates"][0].Name)
	assert.Equal(t, 60_000.0, body["templates"][0].Price)
}

func TestBuyBusinessFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses", map[string]any{"template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decodeBody[econ.BusinessView](t, rec)
	assert.Equal(t, "Coffee Collective", view.Name)
	assert.Equal(t, int32(1), view.Level)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses", map[string]any{"template_id": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses", map[string]any{"template_id": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/v1/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody[econ.StateView](t, rec)
	require.Len(t, state.Businesses, 1)
}

func TestUpgradeEndpoints(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses", map[string]any{"template_id": 1})

	rec := doJSON(t, s.Handler(), http.MethodGet, "/v1/businesses/1/upgrades/productivity/cost", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decodeBody[map[string]any](t, rec)
	assert.Equal(t, 8_000.0, quote["cost"])

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/1/upgrades", map[string]any{"track": "productivity"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[econ.BusinessView](t, rec)
	assert.Equal(t, int32(2), view.UpgradeLevels["productivity"])

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/1/upgrades", map[string]any{"track": "alchemy"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/abc/upgrades", map[string]any{"track": "productivity"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectEndpoints(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses", map[string]any{"template_id": 1})

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/1/projects/start", map[string]any{"name": "Roastery Line"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[econ.BusinessView](t, rec)
	require.NotNil(t, view.Project)
	assert.Equal(t, "Roastery Line", view.Project.Name)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/1/projects/start", map[string]any{"name": "Franchise Study"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/1/projects/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/1/projects/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDarkSideEndpoint(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses", map[string]any{"template_id": 5})

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/5/darkside", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[econ.BusinessView](t, rec)
	assert.Equal(t, econ.CategoryDark, view.Category)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses/5/darkside", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSaveLoadWithoutStoreUsesLocalFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	s := newTestServer(t)
	doJSON(t, s.Handler(), http.MethodPost, "/v1/businesses", map[string]any{"template_id": 1})

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/save", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	fresh := newTestServer(t)
	rec = doJSON(t, fresh.Handler(), http.MethodPost, "/v1/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody[econ.StateView](t, rec)
	require.Len(t, state.Businesses, 1)
	assert.Equal(t, "Coffee Collective", state.Businesses[0].Name)
}

func TestLoadWithoutSaveReturnsNotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	s := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/load", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
