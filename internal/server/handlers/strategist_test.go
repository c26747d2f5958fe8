package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
	apperrors "github.com/viralstrategist/viralstrategist/internal/errors"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

// echoRunner records the params it was given and returns a fixed outcome.
type echoRunner struct {
	got     strategist.Params
	started chan struct{}
	block   chan struct{}
}

func (r *echoRunner) Run(ctx context.Context, mode strategist.Mode, params strategist.Params) (*strategist.Outcome, error) {
	r.got = params
	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		<-r.block
	}
	return &strategist.Outcome{ID: "out-1", Mode: mode, Status: strategist.StatusOK, Raw: "SCORE: 80%"}, nil
}

func newTestHandler(t *testing.T, runner strategist.Runner) *StrategistHandler {
	t.Helper()
	prompts, err := prompt.LoadDefaults()
	require.NoError(t, err)
	registry, err := prompt.NewRegistry(prompts)
	require.NoError(t, err)

	return &StrategistHandler{
		Session: strategist.NewSession(runner),
		Prompts: registry,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/action", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.HTTPErrorResponse {
	t.Helper()
	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestActionReturnsOutcome(t *testing.T) {
	runner := &echoRunner{}
	h := newTestHandler(t, runner)

	rec := postJSON(t, h.Action(strategist.ModeIdeas), ActionRequest{Topic: "morning coffee", Niche: "Food"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out strategist.Outcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, strategist.ModeIdeas, out.Mode)
	assert.Equal(t, strategist.StatusOK, out.Status)
	assert.Equal(t, "morning coffee", runner.got.Topic)
	assert.Equal(t, "Food", runner.got.Niche)

	current, ok := h.Session.Current()
	require.True(t, ok)
	assert.Equal(t, "out-1", current.ID)
}

func TestActionRejectsMissingInput(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})

	rec := postJSON(t, h.Action(strategist.ModeHashtags), ActionRequest{Topic: "coffee"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeValidationFailed, body.Error.Code)
}

func TestActionAcceptsEmptyBodyForAnalysis(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", http.NoBody)
	rec := httptest.NewRecorder()
	h.Action(strategist.ModeAnalysis)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestActionRejectsMalformedJSON(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})

	req := httptest.NewRequest(http.MethodPost, "/v1/ideas", strings.NewReader(`{"topic":`))
	rec := httptest.NewRecorder()
	h.Action(strategist.ModeIdeas)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Error.Code)
}

func TestActionDecodesVideo(t *testing.T) {
	runner := &echoRunner{}
	h := newTestHandler(t, runner)
	video := []byte("fake-webm-bytes")

	rec := postJSON(t, h.Action(strategist.ModeAnalysis), ActionRequest{
		VideoBase64: "data:video/webm;base64," + base64.StdEncoding.EncodeToString(video),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, video, runner.got.Video)
	assert.Equal(t, "video/webm", runner.got.VideoType)
}

func TestActionExplicitVideoTypeWins(t *testing.T) {
	runner := &echoRunner{}
	h := newTestHandler(t, runner)

	rec := postJSON(t, h.Action(strategist.ModeAnalysis), ActionRequest{
		VideoBase64: "data:video/webm;base64," + base64.StdEncoding.EncodeToString([]byte("v")),
		VideoType:   "video/quicktime",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/quicktime", runner.got.VideoType)
}

func TestActionRejectsBadBase64(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})

	rec := postJSON(t, h.Action(strategist.ModeAnalysis), ActionRequest{VideoBase64: "***not base64***"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Error.Code)
}

func TestActionRejectsOversizedVideo(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})
	h.MaxVideoBytes = 8

	rec := postJSON(t, h.Action(strategist.ModeAnalysis), ActionRequest{
		VideoBase64: base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")),
	})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apperrors.CodePayloadTooLarge, decodeError(t, rec).Error.Code)
}

func TestActionRejectsOversizedBody(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})
	h.MaxVideoBytes = 3

	rec := postJSON(t, h.Action(strategist.ModeAnalysis), ActionRequest{
		Visuals: strings.Repeat("x", 128<<10),
	})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestActionConflictWhileBusy(t *testing.T) {
	runner := &echoRunner{started: make(chan struct{}), block: make(chan struct{})}
	h := newTestHandler(t, runner)

	done := make(chan int, 1)
	go func() {
		rec := postJSON(t, h.Action(strategist.ModeAnalysis), ActionRequest{})
		done <- rec.Code
	}()
	<-runner.started

	rec := postJSON(t, h.Action(strategist.ModeIdeas), ActionRequest{Topic: "coffee"})
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeConflict, body.Error.Code)
	assert.Equal(t, "an action is already running", body.Error.Message)

	close(runner.block)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestGetAndClearResult(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})

	rec := httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/v1/result", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, decodeError(t, rec).Error.Code)

	require.Equal(t, http.StatusOK, postJSON(t, h.Action(strategist.ModeAnalysis), ActionRequest{}).Code)

	rec = httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/v1/result", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"out-1"`)

	rec = httptest.NewRecorder()
	h.ClearResult(rec, httptest.NewRequest(http.MethodDelete, "/v1/result", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, ok := h.Session.Current()
	assert.False(t, ok)
}

func TestOptionsListsCatalogs(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})

	rec := httptest.NewRecorder()
	h.Options(rec, httptest.NewRequest(http.MethodGet, "/v1/options", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var opts strategist.Options
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&opts))
	assert.Equal(t, strategist.DefaultOptions, opts)
}

func TestListPrompts(t *testing.T) {
	h := newTestHandler(t, &echoRunner{})

	rec := httptest.NewRecorder()
	h.ListPrompts(rec, httptest.NewRequest(http.MethodGet, "/v1/prompts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Prompts []PromptInfo `json:"prompts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	slugs := make([]string, 0, len(body.Prompts))
	for _, p := range body.Prompts {
		slugs = append(slugs, p.Slug)
		if p.Slug == "viral-scan" {
			assert.True(t, p.AcceptsVideo)
		}
	}
	assert.ElementsMatch(t, []string{"viral-scan", "viral-ideas", "viral-hashtags"}, slugs)
}

func TestListPromptsWithoutRegistry(t *testing.T) {
	h := &StrategistHandler{Session: strategist.NewSession(&echoRunner{})}

	rec := httptest.NewRecorder()
	h.ListPrompts(rec, httptest.NewRequest(http.MethodGet, "/v1/prompts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prompts":[]}`, rec.Body.String())
}
