package api

import (
	"embed"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JustJay7/court-status-fetcher/internal/cache"
	"github.com/JustJay7/court-status-fetcher/internal/config"
	"github.com/JustJay7/court-status-fetcher/internal/history"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, cache cache.Cache, fetcher Fetcher, recorder *history.Recorder, logger *logger.Logger, cfg *config.Config) {
	h := NewHandlers(db, cache, fetcher, recorder, logger, cfg)

	router.SetHTMLTemplate(loadTemplates())
	router.Use(RequestID())

	limited := RateLimit(cfg.APIRateLimit, cfg.APIRateWindow)

	// HTML routes
	router.GET("/", h.HomePage)
	router.POST("/search", limited, h.SearchCase)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/case", limited, h.GetCaseAPI)
		api.GET("/history", h.HistoryAPI)
		api.GET("/cache/stats", h.CacheStats)
	}
}

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"upper": strings.ToUpper,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
