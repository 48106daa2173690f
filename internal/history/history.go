// Package history records every fetch attempt to the query log.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/JustJay7/court-status-fetcher/internal/database"
	"github.com/JustJay7/court-status-fetcher/internal/scraper"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Meta describes where an attempt came from.
type Meta struct {
	RequestID string
	Source    string
	IPAddress string
	Started   time.Time
	Duration  time.Duration
}

// Recorder writes query logs. Save is best effort and never reports
// failure to the caller; Record does.
type Recorder struct {
	db      *gorm.DB
	logger  *logger.Logger
	async   bool
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRecorder creates a recorder. With async set, Save returns at once and
// the write finishes in the background.
func NewRecorder(db *gorm.DB, log *logger.Logger, async bool, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{db: db, logger: log, async: async, timeout: timeout}
}

// Record stores one attempt and returns the new row.
func (r *Recorder) Record(ctx context.Context, req scraper.QueryRequest, res scraper.FetchResult, meta Meta) (*database.QueryLog, error) {
	entry, err := newEntry(req, res, meta)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to save query log: %w", err)
	}
	return entry, nil
}

// Save records an attempt under its own deadline, detached from ctx's
// cancellation, and only logs failures.
func (r *Recorder) Save(ctx context.Context, req scraper.QueryRequest, res scraper.FetchResult, meta Meta) {
	save := func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		if _, err := r.Record(sctx, req, res, meta); err != nil {
			r.logger.Error("Failed to record query", "request_id", meta.RequestID, "error", err)
		}
	}

	if !r.async {
		save()
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		save()
	}()
}

// Wait blocks until background saves have finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Recent lists the newest attempts first. limit is clamped to
// [1, MaxLimit]; zero means DefaultLimit.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]database.QueryLog, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	var logs []database.QueryLog
	err := r.db.WithContext(ctx).
		Omit("raw_response").
		Preload("Documents").
		Order("query_time DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list query logs: %w", err)
	}
	return logs, nil
}

// AttachDocuments stores downloaded judgment files against a query log.
func (r *Recorder) AttachDocuments(ctx context.Context, logID uint, docs []database.Document) error {
	if len(docs) == 0 {
		return nil
	}
	for i := range docs {
		docs[i].QueryLogID = logID
	}
	if err := r.db.WithContext(ctx).Create(&docs).Error; err != nil {
		return fmt.Errorf("failed to save documents: %w", err)
	}
	return nil
}

func newEntry(req scraper.QueryRequest, res scraper.FetchResult, meta Meta) (*database.QueryLog, error) {
	raw, err := rawResponse(res)
	if err != nil {
		return nil, err
	}

	started := meta.Started
	if started.IsZero() {
		started = time.Now()
	}

	entry := &database.QueryLog{
		RequestID:   meta.RequestID,
		Source:      meta.Source,
		CaseType:    req.CaseType,
		CaseNumber:  req.CaseNumber,
		CaseYear:    req.CaseYear,
		Status:      string(res.Status),
		ErrorKind:   string(res.ErrorKind),
		RecordCount: len(res.Data),
		RawResponse: raw,
		QueryTime:   started,
		DurationMS:  meta.Duration.Milliseconds(),
		IPAddress:   meta.IPAddress,
	}
	if res.Status != scraper.StatusSuccess {
		entry.ErrorMessage = res.Message
	}
	return entry, nil
}

// rawResponse keeps the page snapshot when there is one, and the result
// itself otherwise.
func rawResponse(res scraper.FetchResult) (string, error) {
	if res.RawHTML != "" {
		return res.RawHTML, nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(b), nil
}
