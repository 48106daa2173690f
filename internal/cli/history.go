package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JustJay7/court-status-fetcher/internal/database"
	"github.com/JustJay7/court-status-fetcher/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent queries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Initialize(a.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			logs, err := history.NewRecorder(db, a.log, false, a.cfg.HistoryTimeout).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Time", "Source", "Case", "Status", "Records", "Message"})
			for _, l := range logs {
				t.AppendRow(table.Row{
					l.QueryTime.Format("2006-01-02 15:04:05"),
					l.Source,
					fmt.Sprintf("%s %s/%s", l.CaseType, l.CaseNumber, l.CaseYear),
					l.Status,
					l.RecordCount,
					l.ErrorMessage,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "number of entries to show")
	return cmd
}
