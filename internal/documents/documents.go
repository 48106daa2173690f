// Package documents downloads judgment files linked from case records.
package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/JustJay7/court-status-fetcher/internal/database"
	"github.com/JustJay7/court-status-fetcher/internal/scraper"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// Downloader fetches pdf and txt judgment documents into a directory tree
// laid out as <dir>/<year>/<case>_<date>_<n>.<ext>.
type Downloader struct {
	client  *resty.Client
	dir     string
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewDownloader creates a downloader. Consecutive requests are spaced at
// least delay apart so the court site is not hammered.
func NewDownloader(dir, userAgent string, timeout, delay time.Duration, log *logger.Logger) *Downloader {
	client := resty.New()
	client.SetTimeout(timeout)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &Downloader{
		client:  client,
		dir:     dir,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log,
	}
}

// Download saves every document link with a URL and a known type. Failed
// links are skipped and reported together in the returned error; the
// documents that did download are always returned.
func (d *Downloader) Download(ctx context.Context, records []scraper.CaseRecord) ([]database.Document, error) {
	var docs []database.Document
	var errs []error

	n := 0
	for _, rec := range records {
		for _, link := range rec.JudgmentLinks {
			if link.URL == nil || link.DocType == scraper.DocUnknown {
				continue
			}
			n++

			if err := d.limiter.Wait(ctx); err != nil {
				return docs, errors.Join(append(errs, err)...)
			}

			doc, err := d.fetch(ctx, rec.CaseNo, link, n)
			if err != nil {
				d.logger.Error("Failed to download document", "url", *link.URL, "error", err)
				errs = append(errs, err)
				continue
			}
			docs = append(docs, doc)
		}
	}

	d.logger.Info("Documents downloaded", "saved", len(docs), "failed", len(errs))
	return docs, errors.Join(errs...)
}

func (d *Downloader) fetch(ctx context.Context, caseNo string, link scraper.JudgmentLink, n int) (database.Document, error) {
	url := *link.URL

	res, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return database.Document{}, fmt.Errorf("failed to download %s: %w", url, err)
	}
	if res.IsError() {
		return database.Document{}, fmt.Errorf("failed to download %s: bad status: %s", url, res.Status())
	}

	year, stamp := "undated", "undated"
	if link.ParsedDate != nil {
		year = link.ParsedDate.YearPrefix()
		stamp = strings.ReplaceAll(link.ParsedDate.String(), "-", "")
	}

	dirPath := filepath.Join(d.dir, year)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return database.Document{}, fmt.Errorf("failed to create directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%d.%s", fileSafe(caseNo), stamp, n, link.DocType)
	fullPath := filepath.Join(dirPath, filename)

	body := res.Body()
	if err := os.WriteFile(fullPath, body, 0644); err != nil {
		return database.Document{}, fmt.Errorf("failed to save file: %w", err)
	}

	d.logger.Debug("Document saved", "path", fullPath, "size", len(body))

	doc := database.Document{
		CaseNo:      caseNo,
		DisplayText: link.DisplayText,
		URL:         url,
		DocType:     string(link.DocType),
		LocalPath:   fullPath,
		SizeBytes:   int64(len(body)),
	}
	if link.ParsedDate != nil {
		t := link.ParsedDate.Time
		doc.JudgmentDate = &t
	}
	return doc, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

func fileSafe(s string) string {
	s = strings.Trim(unsafeChars.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "case"
	}
	return s
}
