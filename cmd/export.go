package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fuelwatch-cli/internal/report"
)

var (
	exportDays int
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored price history to CSV",
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

		records, err := st.PriceHistory(ctx, "", exportDays)
		if err != nil {
			return eris.Wrap(err, "read price history")
		}
		if len(records) == 0 {
			cmd.Printf("No historical data found for the last %d days.\n", exportDays)
			return nil
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("sams_club_history_%d_days.csv", exportDays)
		}

		if err := report.WriteHistoryCSV(out, records); err != nil {
			return eris.Wrap(err, "write history export")
		}

		zap.L().Info("exported price history",
			zap.String("path", out),
			zap.Int("rows", len(records)),
			zap.Int("days", exportDays),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().IntVar(&exportDays, "days", 30, "trailing window in days")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default sams_club_history_<days>_days.csv)")
	rootCmd.AddCommand(exportCmd)
}
