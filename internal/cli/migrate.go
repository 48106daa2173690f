package cli

import (
	"github.com/spf13/cobra"

	"github.com/JustJay7/court-status-fetcher/internal/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the query log schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Initialize(a.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			a.log.Info("Database migrations completed successfully", "path", a.cfg.DatabasePath)
			return nil
		},
	}
}
