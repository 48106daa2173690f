package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DatabasePath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheSize int
	CacheTTL  time.Duration

	// Court settings
	CourtBaseURL string
	CourtName    string

	// Scraper settings
	ScraperTimeout     time.Duration
	NavigationRetries  int
	NavigationBackoff  time.Duration
	CaptchaReadTimeout time.Duration
	SpinnerTimeout     time.Duration
	PollInterval       time.Duration
	HeadlessMode       bool
	UserAgent          string
	BrowserPath        string
	SiteLayoutFile     string

	// Concurrency settings
	MaxConcurrentScrapes int

	// API settings
	APIRateLimit  int
	APIRateWindow time.Duration

	// Query history settings
	HistoryAsync   bool
	HistoryTimeout time.Duration

	// Document downloads
	DownloadDir string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "./data/court_queries.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		CourtBaseURL:   getEnv("COURT_BASE_URL", "https://delhihighcourt.nic.in"),
		CourtName:      getEnv("COURT_NAME", "High Court of Delhi"),
		UserAgent:      getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		BrowserPath:    getEnv("ROD_BROWSER_PATH", ""),
		SiteLayoutFile: getEnv("SITE_LAYOUT_FILE", ""),
		DownloadDir:    getEnv("DOWNLOAD_DIR", "./data/documents"),
	}

	var err error
	if cfg.CacheSize, err = getInt("CACHE_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 30, time.Minute); err != nil {
		return nil, err
	}
	if cfg.ScraperTimeout, err = getDuration("SCRAPER_TIMEOUT", 60, time.Second); err != nil {
		return nil, err
	}
	if cfg.NavigationRetries, err = getInt("NAVIGATION_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.NavigationBackoff, err = getDuration("NAVIGATION_BACKOFF_MS", 1000, time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.CaptchaReadTimeout, err = getDuration("CAPTCHA_READ_TIMEOUT_MS", 3000, time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.SpinnerTimeout, err = getDuration("SPINNER_TIMEOUT_MS", 3000, time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getDuration("POLL_INTERVAL_MS", 250, time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentScrapes, err = getInt("MAX_CONCURRENT_SCRAPES", 2); err != nil {
		return nil, err
	}
	if cfg.APIRateLimit, err = getInt("API_RATE_LIMIT", 30); err != nil {
		return nil, err
	}
	if cfg.APIRateWindow, err = getDuration("API_RATE_WINDOW", 60, time.Second); err != nil {
		return nil, err
	}
	if cfg.HistoryTimeout, err = getDuration("HISTORY_TIMEOUT_MS", 5000, time.Millisecond); err != nil {
		return nil, err
	}

	cfg.HeadlessMode = getEnv("HEADLESS_MODE", "true") == "true"
	cfg.HistoryAsync = getEnv("HISTORY_ASYNC", "false") == "true"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the scraper cannot run with
func (c *Config) Validate() error {
	switch {
	case c.CourtBaseURL == "":
		return errors.New("COURT_BASE_URL must not be empty")
	case c.NavigationRetries < 1:
		return errors.New("NAVIGATION_RETRIES must be at least 1")
	case c.ScraperTimeout <= 0:
		return errors.New("SCRAPER_TIMEOUT must be positive")
	case c.PollInterval <= 0:
		return errors.New("POLL_INTERVAL_MS must be positive")
	case c.MaxConcurrentScrapes < 1:
		return errors.New("MAX_CONCURRENT_SCRAPES must be at least 1")
	case c.APIRateLimit < 0:
		return errors.New("API_RATE_LIMIT must not be negative")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// getDuration reads an integer count of unit.
func getDuration(key string, defaultValue int, unit time.Duration) (time.Duration, error) {
	v, err := getInt(key, defaultValue)
	if err != nil {
		return 0, err
	}
	return time.Duration(v) * unit, nil
}
