// Package store persists the fuel price history: club profiles, the
// append-only price ledger, and the per-day scrape attempt log.
package store

import (
	"context"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

// DailyStats summarizes scraping activity for one date.
type DailyStats struct {
	TotalAttempts  int `json:"total_attempts"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
	ClubsAttempted int `json:"clubs_attempted"`
}

// Store defines the persistence interface for the price history.
//
// price_history and scraping_log are append-only: rows are never updated or
// deleted. clubs is upsert-only. AppendPrices drops sentinel rows at the
// write boundary so the history never contains values aggregation would
// have to special-case.
type Store interface {
	// Attempt log
	AlreadyAttempted(ctx context.Context, clubName, date string) (bool, error)
	RecordAttempt(ctx context.Context, attempt model.ScrapeAttempt) error
	DailyStats(ctx context.Context, date string) (DailyStats, error)

	// Club profiles
	UpsertProfile(ctx context.Context, profile model.ClubProfile) error
	ListProfiles(ctx context.Context) ([]model.ClubProfile, error)

	// Price history
	AppendPrices(ctx context.Context, clubName, date, tm string, prices []model.PricePair, source string) (int, error)
	LatestPrices(ctx context.Context, clubName string) ([]model.PricePair, error)
	PriceHistory(ctx context.Context, clubName string, days int) ([]model.PriceRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// latestScanLimit bounds the recent-row scan backing LatestPrices. Ten rows
// comfortably covers one full set of fuel grades plus a failed day or two.
const latestScanLimit = 10

// dedupeLatest keeps the first (most recent) price per fuel type from a
// newest-first row scan, preserving first-seen order.
func dedupeLatest(rows []model.PricePair) []model.PricePair {
	seen := make(map[string]bool, len(rows))
	var out []model.PricePair
	for _, r := range rows {
		if seen[r.FuelType] {
			continue
		}
		seen[r.FuelType] = true
		out = append(out, r)
	}
	return out
}

// filterSentinels returns the rows eligible for persistence.
func filterSentinels(prices []model.PricePair) []model.PricePair {
	var out []model.PricePair
	for _, p := range prices {
		if model.IsSentinel(p.FuelType) {
			continue
		}
		out = append(out, p)
	}
	return out
}
