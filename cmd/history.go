package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fuelwatch-cli/internal/aggregate"
	"github.com/sells-group/fuelwatch-cli/internal/report"
)

var (
	historyClub string
	historyDays int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored price history and trends",
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

		records, err := st.PriceHistory(ctx, historyClub, historyDays)
		if err != nil {
			return eris.Wrap(err, "read price history")
		}
		if len(records) == 0 {
			cmd.Printf("No price history found for the last %d days.\n", historyDays)
			return nil
		}

		report.History(os.Stdout, records)

		trends := aggregate.TrendStats(records)
		if len(trends) > 0 {
			report.Trends(os.Stdout, trends)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyClub, "club", "", "filter to one club")
	historyCmd.Flags().IntVar(&historyDays, "days", 30, "trailing window in days")
	rootCmd.AddCommand(historyCmd)
}
