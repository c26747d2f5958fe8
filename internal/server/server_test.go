package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
	apperrors "github.com/viralstrategist/viralstrategist/internal/errors"
	"github.com/viralstrategist/viralstrategist/internal/server/handlers"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

type fixedRunner struct{}

func (fixedRunner) Run(ctx context.Context, mode strategist.Mode, params strategist.Params) (*strategist.Outcome, error) {
	return &strategist.Outcome{ID: "fixed", Mode: mode, Status: strategist.StatusOK, Raw: "#fyp #coffee"}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	prompts, err := prompt.LoadDefaults()
	require.NoError(t, err)
	registry, err := prompt.NewRegistry(prompts)
	require.NoError(t, err)

	return New(Options{
		Host:    "127.0.0.1",
		Port:    0,
		Session: strategist.NewSession(fixedRunner{}),
		Prompts: registry,
	})
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodGet, "/does-not-exist", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
	assert.Equal(t, body.Error.RequestID, rec.Header().Get("X-Request-ID"))
}

func TestServerRejectsWrongMethod(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodGet, "/v1/analyze", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerActionRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodPost, "/v1/hashtags", `{"topic":"coffee","visuals":"latte art"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out strategist.Outcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, strategist.ModeHashtags, out.Mode)

	rec = serve(srv, http.MethodGet, "/v1/result", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"fixed"`)

	rec = serve(srv, http.MethodDelete, "/v1/result", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(srv, http.MethodGet, "/v1/result", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerValidatesActions(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodPost, "/v1/ideas", `{"niche":"Business"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeValidationFailed, body.Error.Code)

	rec = serve(srv, http.MethodPost, "/v1/analyze", `{"video_base64":"%%%"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerCatalogRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodGet, "/v1/options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"regions"`)

	rec = serve(srv, http.MethodGet, "/v1/prompts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "viral-scan")
}

func TestServerHealthRoutes(t *testing.T) {
	health := handlers.NewHealthManager("test")
	health.RegisterChecker("telemetry", handlers.TelemetryCheck(false))
	srv := New(Options{Health: health})

	for _, path := range []string{"/health", "/health/live", "/health/ready", "/health/startup"} {
		rec := serve(srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Same(t, health, srv.Health())
}

func TestServerWithoutSessionHasNoActionRoutes(t *testing.T) {
	srv := New(Options{})

	rec := serve(srv, http.MethodPost, "/v1/analyze", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(srv, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerAddr(t *testing.T) {
	srv := New(Options{Host: "127.0.0.1", Port: 8085})
	assert.Equal(t, "127.0.0.1:8085", srv.Addr())
}

func TestAdminEndpointRequiresToken(t *testing.T) {
	t.Setenv("VIRALSTRATEGIST_ADMIN_TOKEN", "")
	srv := New(Options{})

	rec := serve(srv, http.MethodPost, "/admin/signal", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
