package backendfake_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:8081", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	status, _ := f.do(t, http.MethodPost, "/api/login", "", `{"username":"x","password":"y"}`)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	f.server.RegisterRouteFunc("GET /boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	status, out := f.do(t, http.MethodGet, "/boom", "", "")
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Internal Server Error", out["detail"])
	require.Contains(t, f.server.Routes(), "GET /boom")
}

func TestMetrics(t *testing.T) {
	f := setupTestFixture(t)
	f.do(t, http.MethodPost, "/api/login", "", `{"username":"x","password":"y"}`)
	f.do(t, http.MethodPost, "/api/login", "", `{"username":"x","password":"y"}`)
	f.do(t, http.MethodGet, "/nowhere", "", "")

	rec := httptest.NewRecorder()
	f.server.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, `finance_fake_backend_requests_total{route="POST /api/login",status="401"} 2`)
	require.Contains(t, body, `finance_fake_backend_requests_total{route="unmatched",status="404"} 1`)
	require.Contains(t, body, `finance_fake_backend_request_duration_seconds_count{route="POST /api/login"} 2`)
}
