// Package scraper fetches case-status records from the court portal.
//
// A fetch runs five stages in order against one private browser session:
// navigate, fill and submit the form, wait for the results grid to settle,
// snapshot the rows, and normalize them. Any stage failure ends the fetch
// with an ERROR result; Fetch itself never returns an error or panics.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JustJay7/court-status-fetcher/internal/browser"
	"github.com/JustJay7/court-status-fetcher/internal/config"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// Scraper handles web scraping operations
type Scraper struct {
	baseURL        string
	layout         Layout
	launcher       browser.Launcher
	logger         *logger.Logger
	headless       bool
	timeout        time.Duration
	retries        int
	backoff        time.Duration
	captchaTimeout time.Duration
	spinnerTimeout time.Duration
	pollInterval   time.Duration
	slots          chan struct{}
	sleep          func(context.Context, time.Duration) error
}

// NewScraper creates a new scraper instance
func NewScraper(cfg *config.Config, layout Layout, launcher browser.Launcher, log *logger.Logger) *Scraper {
	return &Scraper{
		baseURL:        strings.TrimRight(cfg.CourtBaseURL, "/"),
		layout:         layout,
		launcher:       launcher,
		logger:         log,
		headless:       cfg.HeadlessMode,
		timeout:        cfg.ScraperTimeout,
		retries:        cfg.NavigationRetries,
		backoff:        cfg.NavigationBackoff,
		captchaTimeout: cfg.CaptchaReadTimeout,
		spinnerTimeout: cfg.SpinnerTimeout,
		pollInterval:   cfg.PollInterval,
		slots:          make(chan struct{}, cfg.MaxConcurrentScrapes),
		sleep:          sleepContext,
	}
}

// SearchURL is the page the form lives on.
func (s *Scraper) SearchURL() string {
	return s.baseURL + s.layout.SearchPath
}

// Option overrides a per-fetch default.
type Option func(*fetchOptions)

type fetchOptions struct {
	headless bool
	timeout  time.Duration
}

// WithHeadless chooses whether the browser window is hidden.
func WithHeadless(headless bool) Option {
	return func(o *fetchOptions) { o.headless = headless }
}

// WithTimeout sets the full-operation timeout used by navigation and every
// results wait. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *fetchOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Fetch runs the whole pipeline for one query. The browser session it
// launches is closed before Fetch returns, whatever the outcome.
func (s *Scraper) Fetch(ctx context.Context, req QueryRequest, opts ...Option) (result FetchResult) {
	o := fetchOptions{headless: s.headless, timeout: s.timeout}
	for _, opt := range opts {
		opt(&o)
	}

	log := s.logger.With("case_type", req.CaseType, "case_number", req.CaseNumber, "case_year", req.CaseYear)
	start := time.Now()
	defer func() {
		log.Info("Fetch finished", "status", result.Status, "records", len(result.Data), "duration", time.Since(start).String())
	}()

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		return unexpectedError(fmt.Errorf("waiting for a free browser slot: %w", ctx.Err()), "").Result()
	}

	session, err := s.launcher.Launch(ctx, browser.LaunchOptions{Headless: o.headless})
	if err != nil {
		log.Error("Failed to launch browser", "error", err)
		return unexpectedError(err, "").Result()
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("Failed to close browser", "error", err)
		}
	}()

	page, err := session.NewPage(ctx)
	if err != nil {
		log.Error("Failed to open page", "error", err)
		return unexpectedError(err, "").Result()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Scraper panicked", "panic", r)
			result = unexpectedError(fmt.Errorf("%v", r), pageHTML(ctx, page)).Result()
		}
	}()

	return s.run(ctx, page, req, o, log)
}

func (s *Scraper) run(ctx context.Context, page browser.Page, req QueryRequest, o fetchOptions, log *logger.Logger) FetchResult {
	nav := &navigator{
		maxRetries: s.retries,
		backoff:    s.backoff,
		timeout:    o.timeout,
		sleep:      s.sleep,
		logger:     log,
	}
	url := s.SearchURL()
	log.Info("Navigating to court website", "url", url)
	if err := nav.open(ctx, page, url); err != nil {
		return navigationError(err).Result()
	}

	form := &formFiller{
		selectors:      s.layout.Selectors,
		strategies:     defaultSelectStrategies,
		timeout:        o.timeout,
		captchaTimeout: s.captchaTimeout,
		logger:         log,
	}
	if serr := form.fill(ctx, page, req); serr != nil {
		return serr.Result()
	}

	w := &waiter{
		selectors:      s.layout.Selectors,
		timeout:        o.timeout,
		spinnerTimeout: s.spinnerTimeout,
		interval:       s.pollInterval,
		logger:         log,
	}
	if serr := w.wait(ctx, page); serr != nil {
		return serr.Result()
	}

	snap, err := takeSnapshot(ctx, page, s.layout.Selectors.ResultsTable, true)
	if err != nil {
		return extractionError(err, pageHTML(ctx, page)).Result()
	}
	return s.process(ctx, page, snap, log)
}

// process turns a settled table snapshot into the final result.
func (s *Scraper) process(ctx context.Context, page browser.Page, snap snapshot, log *logger.Logger) FetchResult {
	if snap.Found {
		if doc, err := parseTable(snap.HTML); err == nil && signalsNoResults(doc, s.layout.Selectors.EmptyCell) {
			log.Info("Court reported no matching records")
			return noDataResult()
		}
	}

	rows, err := extractRows(snap, s.layout.Columns)
	if err != nil {
		raw := snap.HTML
		if raw == "" {
			raw = pageHTML(ctx, page)
		}
		return extractionError(err, raw).Result()
	}
	log.Debug("Rows extracted", "rows", len(rows))

	return FetchResult{Status: StatusSuccess, Data: Normalize(rows)}
}

// pageHTML is a best-effort diagnostic snapshot. It gets its own short
// deadline because ctx may already have expired.
func pageHTML(ctx context.Context, page browser.Page) string {
	if page == nil {
		return ""
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	html, err := page.HTML(hctx)
	if err != nil {
		return ""
	}
	return html
}
