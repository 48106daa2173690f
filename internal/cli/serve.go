package cli

import (
	"github.com/spf13/cobra"

	"github.com/JustJay7/court-status-fetcher/internal/cache"
	"github.com/JustJay7/court-status-fetcher/internal/database"
	"github.com/JustJay7/court-status-fetcher/internal/history"
	"github.com/JustJay7/court-status-fetcher/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if port != "" {
				cfg.Port = port
			}

			db, err := database.Initialize(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			fetcher, err := a.newFetcher(cfg, a.log)
			if err != nil {
				return err
			}

			recorder := history.NewRecorder(db, a.log, cfg.HistoryAsync, cfg.HistoryTimeout)
			cacheService := cache.NewCache(cfg.CacheSize, cfg.CacheTTL)
			srv := server.New(cfg, db, cacheService, fetcher, recorder, a.log)

			a.log.Info("Starting Court Status Fetcher",
				"host", cfg.Host,
				"port", cfg.Port,
				"court", cfg.CourtName,
			)

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}
