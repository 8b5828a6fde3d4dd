package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fuelwatch-cli/internal/registry"
	"github.com/sells-group/fuelwatch-cli/internal/report"
)

var statsDate string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show scraping statistics for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		date := statsDate
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		stats, err := st.DailyStats(ctx, date)
		if err != nil {
			return eris.Wrap(err, "read daily stats")
		}

		clubs, err := registry.Load(cfg.Registry.Path)
		if err != nil {
			return eris.Wrap(err, "load club registry")
		}

		report.Stats(os.Stdout, date, stats, len(clubs))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDate, "date", "", "date (YYYY-MM-DD), default today")
	rootCmd.AddCommand(statsCmd)
}
