package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JustJay7/court-status-fetcher/internal/cache"
	"github.com/JustJay7/court-status-fetcher/internal/config"
	"github.com/JustJay7/court-status-fetcher/internal/database"
	"github.com/JustJay7/court-status-fetcher/internal/history"
	"github.com/JustJay7/court-status-fetcher/internal/scraper"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

type noDataFetcher struct{}

func (noDataFetcher) Fetch(ctx context.Context, req scraper.QueryRequest, opts ...scraper.Option) scraper.FetchResult {
	return scraper.FetchResult{Status: scraper.StatusNoData, Message: "none"}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *observer.ObservedLogs) {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.New(zap.New(core))
	recorder := history.NewRecorder(db, log, true, time.Second)

	return New(cfg, db, cache.NewCache(10, time.Minute), noDataFetcher{}, recorder, log), logs
}

func TestRequestLogging(t *testing.T) {
	s, logs := newTestServer(t, &config.Config{CourtName: "High Court of Delhi"})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/case?type=FAO", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/case?type=FAO", fields["path"])
	assert.Equal(t, int64(http.StatusBadRequest), fields["status"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), fields["request_id"])
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, &config.Config{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/case", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := &config.Config{Host: "127.0.0.1", Port: strconv.Itoa(port), ScraperTimeout: time.Second}
	s, logs := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 1, logs.FilterMessage("Server exited gracefully").Len())
}

func TestRunReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	s, _ := newTestServer(t, &config.Config{Host: "127.0.0.1", Port: strconv.Itoa(port)})

	err = s.Run(context.Background())
	assert.ErrorContains(t, err, "failed to start server")
}
