package scraper

import (
	"context"
	"time"

	"github.com/JustJay7/court-status-fetcher/internal/browser"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// navigator opens the search page, retrying with linear backoff.
type navigator struct {
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	sleep      func(context.Context, time.Duration) error
	logger     *logger.Logger
}

// open tries up to maxRetries times, sleeping backoff*attempt between
// attempts, and returns the last error if none succeeds.
func (n *navigator) open(ctx context.Context, page browser.Page, url string) error {
	attempts := n.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		navCtx, cancel := context.WithTimeout(ctx, n.timeout)
		err := page.Navigate(navCtx, url)
		cancel()
		if err == nil {
			n.logger.Debug("Navigation successful", "url", url, "attempt", attempt)
			return nil
		}

		lastErr = err
		n.logger.Warn("Navigation failed", "url", url, "attempt", attempt, "error", err)

		if attempt == attempts {
			break
		}
		if err := n.sleep(ctx, n.backoff*time.Duration(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// sleepContext waits for d or until ctx ends.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
