package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

var (
	addPriceClub string
	addPriceFuel string
	addPriceVal  string
)

var addPriceCmd = &cobra.Command{
	Use:   "add-price",
	Short: "Record a manual price observation for a club",
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

		now := time.Now()
		written, err := st.AppendPrices(ctx,
			addPriceClub,
			now.Format("2006-01-02"),
			now.Format("15:04:05"),
			[]model.PricePair{{FuelType: addPriceFuel, Price: addPriceVal}},
			model.SourceManual,
		)
		if err != nil {
			return eris.Wrap(err, "append manual price")
		}
		if written == 0 {
			return eris.Errorf("fuel type %q is a reserved placeholder and cannot be recorded", addPriceFuel)
		}

		zap.L().Info("recorded manual price",
			zap.String("club", addPriceClub),
			zap.String("fuel_type", addPriceFuel),
			zap.String("price", addPriceVal),
		)
		return nil
	},
}

func init() {
	addPriceCmd.Flags().StringVar(&addPriceClub, "club", "", "club name (required)")
	addPriceCmd.Flags().StringVar(&addPriceFuel, "fuel-type", "", "fuel type, e.g. Regular (required)")
	addPriceCmd.Flags().StringVar(&addPriceVal, "price", "", "price, e.g. $3.45 (required)")
	_ = addPriceCmd.MarkFlagRequired("club")
	_ = addPriceCmd.MarkFlagRequired("fuel-type")
	_ = addPriceCmd.MarkFlagRequired("price")
	rootCmd.AddCommand(addPriceCmd)
}
