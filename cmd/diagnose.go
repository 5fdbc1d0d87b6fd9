package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"sticker-studio/app"
	"sticker-studio/config"
	"sticker-studio/db"
	"sticker-studio/models"
)

func writeJobs(cmd *cobra.Command, jobs []models.PrintJob) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tORDER\tPAGES\tPLACED\tFAILED\tDOCUMENTS")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			job.CreatedAt.Format(time.RFC3339), job.OrderID, job.PageCount, job.PlacedItems, job.FailedItems, len(job.Documents))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, job := range jobs {
		if len(job.Documents) == 0 && len(job.Failures) == 0 {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nOrder %s (%s)\n", job.OrderID, job.ID)
		for _, doc := range job.Documents {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", doc.Path, doc.URL)
		}
		for _, f := range job.Failures {
			fmt.Fprintf(cmd.OutOrStdout(), "  ✗ item %d %s: %s\n", f.Index, f.Kind, f.Reason)
		}
	}
	return nil
}

func newDiagnoseCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Show the most recent fulfillment records",
		Example: `  sticker-studio diagnose --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("diagnose needs a database: set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
			}

			jobs, err := app.OpenJobs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.CloseDB()

			recent, err := jobs.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recent) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No print jobs recorded yet.")
				return nil
			}
			return writeJobs(cmd, recent)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of records to show")

	return cmd
}
