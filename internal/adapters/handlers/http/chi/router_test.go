package chi_test

import (
	"bytes"
	"encoding/json"
	"media-pipeline/internal/adapters/handlers/http/chi"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Health(t *testing.T) {
	// Arrange
	h := chi.NewRouter(zerolog.Nop(), nil, nil, nil, "")
	w := httptest.NewRecorder()

	// Act
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var resp chi.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRouter_Metrics(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "router_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()
	h := chi.NewRouter(zerolog.Nop(), nil, nil, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), "prod")
	w := httptest.NewRecorder()

	// Act
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "router_test_total 1")
}

func TestLoggerMiddleware_LogsRequests(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	h := chi.NewRouter(zerolog.New(&buf), nil, nil, nil, "")

	// Act
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))

	// Assert
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "http_request", entry["message"])
	assert.Equal(t, "/api/v1/missing", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
}
