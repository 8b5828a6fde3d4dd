package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fuelwatch-cli/internal/aggregate"
	"github.com/sells-group/fuelwatch-cli/internal/pipeline"
	"github.com/sells-group/fuelwatch-cli/internal/registry"
	"github.com/sells-group/fuelwatch-cli/internal/report"
	"github.com/sells-group/fuelwatch-cli/internal/scrape"
)

var runNoExport bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape all clubs not yet scraped today and report prices",
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

		clubs, err := registry.Load(cfg.Registry.Path)
		if err != nil {
			return eris.Wrap(err, "load club registry")
		}

		fetcher := scrape.NewHTTPFetcher(scrape.Options{
			Timeout:           cfg.Scrape.Timeout(),
			Retries:           cfg.Scrape.Retries,
			RequestsPerSecond: cfg.Scrape.RequestsPerSecond,
		})

		orch := pipeline.New(st, fetcher, clubs, pipeline.Options{
			MinDelay: cfg.Scrape.MinDelay(),
			MaxDelay: cfg.Scrape.MaxDelay(),
		})

		today := time.Now().Format("2006-01-02")

		results, err := orch.RunAll(ctx)
		if eris.Is(err, pipeline.ErrAllCached) {
			zap.L().Info("all clubs already scraped today, reporting stored data")

			records, err := st.PriceHistory(ctx, "", 1)
			if err != nil {
				return eris.Wrap(err, "read today's history")
			}
			report.History(os.Stdout, records)

			stats, err := st.DailyStats(ctx, today)
			if err != nil {
				return eris.Wrap(err, "read daily stats")
			}
			report.Stats(os.Stdout, today, stats, len(clubs))
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "scrape run")
		}

		rows := aggregate.Flatten(results)
		report.Rows(os.Stdout, rows)

		lowest := aggregate.LowestByFuelType(results)
		if len(lowest) > 0 {
			report.Lowest(os.Stdout, lowest)
		}

		stats, err := st.DailyStats(ctx, today)
		if err != nil {
			return eris.Wrap(err, "read daily stats")
		}
		report.Stats(os.Stdout, today, stats, len(clubs))

		if !runNoExport {
			var exportErr error
			switch cfg.Export.Format {
			case "xlsx":
				exportErr = report.WriteXLSX(cfg.Export.Path, rows)
			default:
				exportErr = report.WriteCSV(cfg.Export.Path, rows)
			}
			if exportErr != nil {
				// Export failure should not fail an otherwise complete run.
				zap.L().Error("export failed", zap.Error(exportErr))
			} else {
				zap.L().Info("wrote export",
					zap.String("path", cfg.Export.Path),
					zap.Int("rows", len(rows)),
				)
			}
		}

		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runNoExport, "no-export", false, "skip writing the export file")
	rootCmd.AddCommand(runCmd)
}
