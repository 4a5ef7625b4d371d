package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareCounts(t *testing.T) {
	before := GetMetrics()
	SetSessionGauge(func() int { return 3 })

	ok := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	bad := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	bad.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/photos", nil))
	IncrementAnalyses()
	IncrementAnalysesFailed()

	after := GetMetrics()
	assert.Equal(t, before["requests_total"].(uint64)+2, after["requests_total"])
	assert.Equal(t, before["requests_success"].(uint64)+1, after["requests_success"])
	assert.Equal(t, before["requests_failed"].(uint64)+1, after["requests_failed"])
	assert.Equal(t, before["analyses_failed"].(uint64)+1, after["analyses_failed"])
	assert.Equal(t, 3, after["sessions_active"])

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "analyses_total")
	assert.Contains(t, body, "uptime_seconds")
}
