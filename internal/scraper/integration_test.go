package scraper

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/court-status-fetcher/internal/browser"
	"github.com/JustJay7/court-status-fetcher/internal/config"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// Hits the live court portal. The CAPTCHA is read from the page, so the
// result depends on the site being up and rendering it as text.
func TestLiveCourtPortal(t *testing.T) {
	if os.Getenv("COURT_INTEGRATION") != "1" || testing.Short() {
		t.Skip("set COURT_INTEGRATION=1 to query the live court site")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	log, err := logger.NewLogger("debug", "text")
	require.NoError(t, err)

	s := NewScraper(cfg, DefaultLayout(), browser.NewRodLauncher(cfg.UserAgent, cfg.BrowserPath, log), log)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	result := s.Fetch(ctx, QueryRequest{CaseType: "W.P.(C)", CaseNumber: "1", CaseYear: "2024"})

	assert.Contains(t, []Status{StatusSuccess, StatusNoData, StatusError}, result.Status)
	if result.Status == StatusError {
		assert.NotEmpty(t, result.Message)
		t.Logf("portal returned an error: %s (%s)", result.Message, result.ErrorKind)
	}
	for _, rec := range result.Data {
		assert.NotEmpty(t, rec.CaseNo)
	}
}
