package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alevsk/iamgraph/internal/config"
)

const sampleDoc = `{
  "data": {
    "hierarchy": {"projects": {"p": {"displayName": "Project"}}},
    "identity": {"service_accounts": {"sa@p.iam.gserviceaccount.com": {"project": "p"}}}
  }
}`

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	return NewServer(cfg, nil, nil)
}

func TestHealthCheck(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())
}

func TestGraphOperations_RequireGraphBuiltFirst(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/graph", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestBuildGraph_ThenExport(t *testing.T) {
	s := testServer(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0644))

	body, err := json.Marshal(buildGraphRequest{Source: path})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/graph/build", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/graph", nil)
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "\"nodes\"")
}

func TestBuildGraph_RejectsMissingSource(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/graph/build", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.AuthToken = "super-secret"
	s := NewServer(cfg, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/graph", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_HealthAlwaysOpen(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.AuthToken = "super-secret"
	s := NewServer(cfg, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t)
	// The request counter is only exposed once it has recorded a request.
	s.router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "iamgraph_api_requests_total")
}
