package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JustJay7/court-status-fetcher/internal/cache"
	"github.com/JustJay7/court-status-fetcher/internal/config"
	"github.com/JustJay7/court-status-fetcher/internal/database"
	"github.com/JustJay7/court-status-fetcher/internal/history"
	"github.com/JustJay7/court-status-fetcher/internal/scraper"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// Fetcher runs one case-status query.
type Fetcher interface {
	Fetch(ctx context.Context, req scraper.QueryRequest, opts ...scraper.Option) scraper.FetchResult
}

// Handlers holds all HTTP handlers
type Handlers struct {
	db      *gorm.DB
	cache   cache.Cache
	fetcher Fetcher
	history *history.Recorder
	logger  *logger.Logger
	cfg     *config.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, cache cache.Cache, fetcher Fetcher, recorder *history.Recorder, logger *logger.Logger, cfg *config.Config) *Handlers {
	return &Handlers{
		db:      db,
		cache:   cache,
		fetcher: fetcher,
		history: recorder,
		logger:  logger,
		cfg:     cfg,
	}
}

// HomePage renders the search form
func (h *Handlers) HomePage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.formData(scraper.QueryRequest{}))
}

// SearchCase handles the search form submission. The query is recorded
// after the page has been written.
func (h *Handlers) SearchCase(c *gin.Context) {
	var req scraper.QueryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}

	result, fromCache, meta := h.search(c, req, "web")

	if result.Status == scraper.StatusSuccess {
		c.HTML(http.StatusOK, "results.html", gin.H{
			"title":     "Search Results",
			"courtName": h.cfg.CourtName,
			"query":     req,
			"records":   result.Data,
			"fromCache": fromCache,
		})
	} else {
		h.renderError(c, http.StatusOK, result.Message)
	}

	h.record(c, req, result, meta, fromCache)
}

// GetCaseAPI returns the FetchResult as JSON: 200 for SUCCESS and NO_DATA,
// 502 when the court site could not be scraped.
func (h *Handlers) GetCaseAPI(c *gin.Context) {
	req := scraper.QueryRequest{
		CaseType:    c.Query("type"),
		CaseNumber:  c.Query("number"),
		CaseYear:    c.Query("year"),
		CaptchaText: c.Query("captcha"),
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  scraper.StatusError,
			"message": "Invalid parameters: " + err.Error(),
		})
		return
	}

	result, fromCache, meta := h.search(c, req, "api")

	status := http.StatusOK
	if result.Status == scraper.StatusError {
		status = http.StatusBadGateway
	}
	c.Header("X-Cache", "MISS")
	if fromCache {
		c.Header("X-Cache", "HIT")
	}
	c.JSON(status, result)

	h.record(c, req, result, meta, fromCache)
}

// record persists a fresh attempt. The response is flushed first so a slow
// database never holds back the page.
func (h *Handlers) record(c *gin.Context, req scraper.QueryRequest, result scraper.FetchResult, meta history.Meta, fromCache bool) {
	if fromCache {
		return
	}
	c.Writer.Flush()
	h.history.Save(c.Request.Context(), req, result, meta)
}

// HistoryAPI lists recent query attempts
func (h *Handlers) HistoryAPI(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(history.DefaultLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "limit must be a positive integer",
		})
		return
	}

	logs, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load query history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	var count int64
	dbHealthy := h.db.Model(&database.QueryLog{}).Count(&count).Error == nil

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"cache":    h.cache.Stats(),
		"time":     time.Now().Unix(),
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.cache.Stats(),
	})
}

// search serves from the cache when it can and otherwise runs the
// pipeline, caching SUCCESS results only.
func (h *Handlers) search(c *gin.Context, req scraper.QueryRequest, source string) (scraper.FetchResult, bool, history.Meta) {
	meta := history.Meta{
		RequestID: c.GetString(requestIDKey),
		Source:    source,
		IPAddress: c.ClientIP(),
		Started:   time.Now(),
	}

	cacheKey := cache.GenerateCacheKey(req)
	if cached, found := h.cache.Get(cacheKey); found {
		h.logger.Info("Cache hit", "key", cacheKey)
		return cached, true, meta
	}

	result := h.fetcher.Fetch(c.Request.Context(), req)
	meta.Duration = time.Since(meta.Started)

	if result.Status == scraper.StatusSuccess {
		if err := h.cache.Set(cacheKey, result); err != nil {
			h.logger.Warn("Failed to cache result", "key", cacheKey, "error", err)
		}
	}
	return result, false, meta
}

func (h *Handlers) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"title":     "No Results",
		"courtName": h.cfg.CourtName,
		"message":   message,
	})
}

func (h *Handlers) formData(req scraper.QueryRequest) gin.H {
	return gin.H{
		"title":     "Case Status Search",
		"courtName": h.cfg.CourtName,
		"caseTypes": getCaseTypes(),
		"years":     getYearRange(time.Now().Year()),
		"query":     req,
	}
}

// Helper functions

func getCaseTypes() []string {
	return []string{
		"W.P.(C)", "W.P.(CRL)", "CRL.A.", "CRL.M.C.", "CRL.REV.P.",
		"CS(OS)", "CS(COMM)", "FAO", "RFA", "LPA",
		"ARB.P.", "O.M.P.(COMM)", "MAT.APP.(F.C.)", "CM(M)", "EX.P.",
	}
}

func getYearRange(currentYear int) []string {
	years := make([]string, 0, 30)

	for year := currentYear; year > currentYear-30; year-- {
		years = append(years, fmt.Sprintf("%d", year))
	}

	return years
}
