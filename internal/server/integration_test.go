package server

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry/exporters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralstrategist/viralstrategist/internal/observability"
)

// cleanupMetrics tears down global telemetry state so each test starts clean.
func cleanupMetrics(t *testing.T) {
	t.Helper()
	t.Cleanup(observability.ResetMetrics)
}

// isPermissionError normalizes OS-specific permission errors so we can skip
// when loopback sockets are blocked.
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{"permission denied", "operation not permitted", "not permitted"} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func initMetricsOrSkip(t *testing.T) {
	t.Helper()
	cleanupMetrics(t)
	if err := observability.InitMetrics("test", 0); err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping metrics tests due to sandbox permissions: %v", err)
		}
		require.NoError(t, err)
	}
}

// startLoopback serves srv on an IPv4 loopback listener.
func startLoopback(t *testing.T, srv *Server) (*httptest.Server, *http.Client) {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping server setup: %v", err)
		}
		require.NoError(t, err)
	}

	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: srv.Handler()},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts, ts.Client()
}

func TestMetricsEndpoint_Integration(t *testing.T) {
	observability.InitServerLogger("test", "error", "simple")
	initMetricsOrSkip(t)

	ts, client := startLoopback(t, newTestServer(t))

	const numRequests = 40
	const numWorkers = 8

	requests := make(chan int, numRequests)
	for i := 0; i < numRequests; i++ {
		requests <- i
	}
	close(requests)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for n := range requests {
				var resp *http.Response
				var err error
				switch n % 4 {
				case 0:
					resp, err = client.Post(ts.URL+"/v1/ideas", "application/json", strings.NewReader(`{"topic":"coffee"}`))
				case 1:
					resp, err = client.Get(ts.URL + "/v1/options")
				case 2:
					resp, err = client.Get(ts.URL + "/missing")
				default:
					resp, err = client.Get(ts.URL + "/health")
				}
				if err == nil {
					_ = resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	resp, err := client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, readErr)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	content := string(body)
	assert.Contains(t, content, "test_http_requests_total")
	assert.Contains(t, content, "test_http_request_duration_ms")
	assert.Contains(t, content, "/v1/ideas")
	assert.True(t, elapsed < 5*time.Second, "load should complete in reasonable time")
}

func TestMetricsEndpoint_PrometheusFormat(t *testing.T) {
	observability.InitServerLogger("test", "error", "simple")
	initMetricsOrSkip(t)

	ts, client := startLoopback(t, newTestServer(t))

	resp, err := client.Get(ts.URL + "/v1/prompts")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	contentType := resp.Header.Get("Content-Type")
	assert.True(t, strings.HasPrefix(contentType, "text/plain; version=0.0.4"),
		"Expected Prometheus content type, got: %s", contentType)

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, readErr)

	samples := 0
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "{") && len(strings.Fields(line)) >= 2 {
			samples++
		}
	}
	assert.Greater(t, samples, 0, "should have labelled metric samples")
}

func TestMetricsEndpoint_WithTelemetryDisabled(t *testing.T) {
	observability.ResetMetrics()

	ts, client := startLoopback(t, newTestServer(t))

	resp, err := client.Get(ts.URL + "/v1/options")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsProxyUsesFallbackAfterExporterCleanup(t *testing.T) {
	t.Run("live exporter", func(t *testing.T) {
		initMetricsOrSkip(t)
		require.NotZero(t, observability.GetMetricsPort())
	})

	require.Zero(t, observability.GetMetricsPort(), "exporter port must not outlive the test that started it")

	originalClient := metricsProxyClient
	t.Cleanup(func() { metricsProxyClient = originalClient })

	var requestedURL string
	metricsProxyClient = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			requestedURL = req.URL.String()
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("up 1\n")),
				Header:     http.Header{"Content-Type": []string{"text/plain; version=0.0.4"}},
			}, nil
		}),
	}
	observability.PrometheusExporter = exporters.NewPrometheusExporter("test", ":9090")
	t.Cleanup(observability.ResetMetrics)

	rec := httptest.NewRecorder()
	newMetricsHandler(9191)(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://127.0.0.1:9191/metrics", requestedURL)
}
