package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JustJay7/court-status-fetcher/internal/database"
	"github.com/JustJay7/court-status-fetcher/internal/documents"
	"github.com/JustJay7/court-status-fetcher/internal/history"
	"github.com/JustJay7/court-status-fetcher/internal/scraper"
)

type fetchFlags struct {
	query    scraper.QueryRequest
	headless bool
	timeout  time.Duration
	download string
}

func newFetchCmd(a *app) *cobra.Command {
	var f fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one case-status search and print the result as JSON",
		Example: `  courtfetch fetch --type "W.P.(C)" --number 55 --year 2024
  courtfetch fetch --type FAO --number 12 --year 2023 --captcha 4821 --download ./orders`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.query.CaseType, "type", "", "case type as listed on the portal, e.g. W.P.(C)")
	flags.StringVar(&f.query.CaseNumber, "number", "", "case number")
	flags.StringVar(&f.query.CaseYear, "year", "", "four-digit case year")
	flags.StringVar(&f.query.CaptchaText, "captcha", "", "CAPTCHA answer; read from the page when omitted")
	flags.BoolVar(&f.headless, "headless", true, "hide the browser window (defaults to HEADLESS_MODE)")
	flags.DurationVar(&f.timeout, "timeout", 0, "per-wait timeout (defaults to SCRAPER_TIMEOUT)")
	flags.StringVar(&f.download, "download", "", "download judgment documents into this directory")
	for _, name := range []string{"type", "number", "year"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (a *app) runFetch(cmd *cobra.Command, f fetchFlags) error {
	if err := f.query.Validate(); err != nil {
		return err
	}

	fetcher, err := a.newFetcher(a.cfg, a.log)
	if err != nil {
		return err
	}

	var opts []scraper.Option
	if cmd.Flags().Changed("headless") {
		opts = append(opts, scraper.WithHeadless(f.headless))
	}
	if f.timeout > 0 {
		opts = append(opts, scraper.WithTimeout(f.timeout))
	}

	ctx := cmd.Context()
	meta := history.Meta{RequestID: uuid.New().String(), Source: "cli", Started: time.Now()}
	result := fetcher.Fetch(ctx, f.query, opts...)
	meta.Duration = time.Since(meta.Started)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	var (
		recorder *history.Recorder
		entry    *database.QueryLog
	)
	db, err := database.Initialize(a.cfg.DatabasePath)
	if err != nil {
		a.log.Warn("Query history unavailable", "error", err)
	} else {
		defer database.Close(db)
		recorder = history.NewRecorder(db, a.log, false, a.cfg.HistoryTimeout)
		if entry, err = recorder.Record(ctx, f.query, result, meta); err != nil {
			a.log.Warn("Failed to record query", "error", err)
		}
	}

	if f.download != "" && result.Status == scraper.StatusSuccess {
		a.downloadDocuments(cmd, f.download, result.Data, entry, recorder)
	}

	if result.Status == scraper.StatusError {
		return fmt.Errorf("fetch failed (%s)", result.ErrorKind)
	}
	return nil
}

func (a *app) downloadDocuments(cmd *cobra.Command, dir string, records []scraper.CaseRecord, entry *database.QueryLog, recorder *history.Recorder) {
	d := documents.NewDownloader(dir, a.cfg.UserAgent, a.cfg.ScraperTimeout, 2*time.Second, a.log)
	docs, err := d.Download(cmd.Context(), records)
	if err != nil {
		a.log.Warn("Some documents failed to download", "error", err)
	}
	if entry == nil {
		return
	}
	if err := recorder.AttachDocuments(cmd.Context(), entry.ID, docs); err != nil {
		a.log.Warn("Failed to record documents", "error", err)
	}
}
