package journalservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journallm/journallm/internal/api"
	"github.com/journallm/journallm/internal/config"
	"github.com/journallm/journallm/internal/store/sqlite"
)

type echoBackend struct{ calls atomic.Int32 }

func (b *echoBackend) Name() string { return "echo" }

func (b *echoBackend) Generate(_ context.Context, system, user string) (string, error) {
	b.calls.Add(1)
	return "  noted  ", nil
}

type stubHealth struct{}

func (stubHealth) IsHealthy() bool             { return true }
func (stubHealth) Components() map[string]bool { return map[string]bool{"store": true} }

func newTestServer(t *testing.T) (*httptest.Server, *echoBackend) {
	t.Helper()
	cfg := config.NewForTesting()
	cfg.FrontendDir = ""
	st, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	backend := &echoBackend{}
	router := buildRouter(st, backend, stubHealth{}, cfg, zerolog.Nop())
	srv := httptest.NewServer(api.CORS(api.RequestLogger(zerolog.Nop())(router)))
	t.Cleanup(srv.Close)
	return srv, backend
}

func TestRouter_Chat(t *testing.T) {
	srv, backend := newTestServer(t)
	body := `{"message":"How was my week?","start_date":"2024-02-01","end_date":"2024-02-07"}`

	for _, path := range []string{"/api/chat/", "/api/chat"} {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.NotEmpty(t, resp.Header.Get(api.RequestIDHeader))
	}
	assert.EqualValues(t, 2, backend.calls.Load())

	resp, err := http.Post(srv.URL+"/api/chat/", "application/json",
		strings.NewReader(`{"message":"x","start_date":"2024-02-07","end_date":"2024-02-01"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.EqualValues(t, 2, backend.calls.Load())
}

func TestRouter_Routes(t *testing.T) {
	srv, _ := newTestServer(t)
	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/context?days=7", http.StatusOK},
		{http.MethodGet, "/api/whoop/status", http.StatusOK},
		{http.MethodPost, "/api/whoop/logout", http.StatusOK},
		{http.MethodPost, "/api/whoop/refresh", http.StatusUnauthorized},
		{http.MethodGet, "/api/whoop/data/cycles", http.StatusUnauthorized},
		{http.MethodGet, "/api/whoop/data/profile", http.StatusUnauthorized},
		{http.MethodGet, "/api/whoop/data/steps", http.StatusNotFound},
	}
	for _, tc := range cases {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.want, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestCalculateStartupHealthTimeout(t *testing.T) {
	assert.Equal(t, 30, calculateStartupHealthTimeout(1))
	assert.Equal(t, 30, calculateStartupHealthTimeout(15))
	assert.Equal(t, 120, calculateStartupHealthTimeout(60))
}

type flipChecker struct{ healthy atomic.Bool }

func (f *flipChecker) Name() string    { return "store" }
func (f *flipChecker) IsHealthy() bool { return f.healthy.Load() }

func (f *flipChecker) Start(context.Context, time.Duration) {
}

func TestWaitUntilHealthy(t *testing.T) {
	cfg := config.NewForTesting()

	gate := &flipChecker{}
	time.AfterFunc(150*time.Millisecond, func() { gate.healthy.Store(true) })
	require.NoError(t, waitUntilHealthy(context.Background(), cfg, gate))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := waitUntilHealthy(ctx, cfg, &flipChecker{})
	assert.ErrorIs(t, err, context.Canceled)
}
