package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func today() string {
	return time.Now().Format("2006-01-02")
}

// --- attempt log ---

func TestSQLite_AlreadyAttempted(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	done, err := st.AlreadyAttempted(ctx, "Avondale", today())
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, st.RecordAttempt(ctx, model.ScrapeAttempt{
		ClubName:    "Avondale",
		ScrapedDate: today(),
		ScrapedTime: "08:00:00",
		Success:     false,
		ErrorMessage: "Timeout",
	}))

	done, err = st.AlreadyAttempted(ctx, "Avondale", today())
	require.NoError(t, err)
	assert.True(t, done, "failed attempts count the same as successes")

	done, err = st.AlreadyAttempted(ctx, "Gilbert", today())
	require.NoError(t, err)
	assert.False(t, done, "attempts are per club")

	done, err = st.AlreadyAttempted(ctx, "Avondale", "1999-01-01")
	require.NoError(t, err)
	assert.False(t, done, "attempts are per date")
}

func TestSQLite_DailyStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	attempts := []model.ScrapeAttempt{
		{ClubName: "Avondale", ScrapedDate: today(), ScrapedTime: "08:00:00", Success: true, PricesFound: 3},
		{ClubName: "Gilbert", ScrapedDate: today(), ScrapedTime: "08:01:00", Success: false, ErrorMessage: "Timeout"},
		{ClubName: "Gilbert", ScrapedDate: today(), ScrapedTime: "09:00:00", Success: true, PricesFound: 2},
	}
	for _, a := range attempts {
		require.NoError(t, st.RecordAttempt(ctx, a))
	}

	stats, err := st.DailyStats(ctx, today())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAttempts)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.ClubsAttempted)
}

func TestSQLite_DailyStats_Empty(t *testing.T) {
	st := newTestStore(t)

	stats, err := st.DailyStats(context.Background(), today())
	require.NoError(t, err)
	assert.Equal(t, DailyStats{}, stats)
}

// --- club profiles ---

func TestSQLite_UpsertProfile(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertProfile(ctx, model.ClubProfile{
		Name:        "Mesa",
		Address:     "1010 S Country Club Dr, Mesa, AZ 85210",
		ClubURL:     "https://www.samsclub.com/club/4816",
		FuelURL:     "https://www.samsclub.com/club/4816/fuel-center",
		CreatedDate: "2026-01-01",
		LastUpdated: "2026-01-01 08:00:00",
	}))

	// Second upsert updates in place, no duplicate row.
	require.NoError(t, st.UpsertProfile(ctx, model.ClubProfile{
		Name:        "Mesa",
		Address:     "1010 S Country Club Dr, Mesa, AZ 85210",
		ClubURL:     "https://www.samsclub.com/club/4816",
		FuelURL:     "https://www.samsclub.com/club/4816/fuel-center",
		CreatedDate: "2026-02-02",
		LastUpdated: "2026-02-02 09:30:00",
	}))

	profiles, err := st.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Mesa", profiles[0].Name)
	assert.Equal(t, "2026-01-01", profiles[0].CreatedDate, "created_date survives re-upsert")
	assert.Equal(t, "2026-02-02 09:30:00", profiles[0].LastUpdated)
}

func TestSQLite_ListProfiles_Sorted(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Yuma", "Avondale", "Mesa"} {
		require.NoError(t, st.UpsertProfile(ctx, model.ClubProfile{Name: name}))
	}

	profiles, err := st.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Avondale", profiles[0].Name)
	assert.Equal(t, "Mesa", profiles[1].Name)
	assert.Equal(t, "Yuma", profiles[2].Name)
}

// --- price history ---

func TestSQLite_AppendPrices_DropsSentinels(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	written, err := st.AppendPrices(ctx, "Avondale", today(), "08:00:00", []model.PricePair{
		{FuelType: "Regular", Price: "$2.89"},
		{FuelType: model.NoPricesFound, Price: model.NoValue},
		{FuelType: model.FetchError, Price: model.NoValue},
		{FuelType: "Premium", Price: "$3.45"},
	}, model.SourceScraped)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	records, err := st.PriceHistory(ctx, "Avondale", 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.False(t, model.IsSentinel(r.FuelType))
	}
}

func TestSQLite_AppendPrices_AllSentinels(t *testing.T) {
	st := newTestStore(t)

	written, err := st.AppendPrices(context.Background(), "Avondale", today(), "08:00:00",
		[]model.PricePair{{FuelType: model.NoPricesAvailable, Price: model.NoValue}},
		model.SourceScraped,
	)
	require.NoError(t, err)
	assert.Zero(t, written, "a write of only placeholders is a no-op")
}

func TestSQLite_LatestPrices(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Older observation day.
	_, err := st.AppendPrices(ctx, "Avondale", "2026-08-29", "08:00:00", []model.PricePair{
		{FuelType: "Regular", Price: "$3.10"},
		{FuelType: "Premium", Price: "$3.70"},
		{FuelType: "Diesel", Price: "$3.99"},
	}, model.SourceScraped)
	require.NoError(t, err)

	// Newer day only carries two grades.
	_, err = st.AppendPrices(ctx, "Avondale", "2026-08-30", "08:00:00", []model.PricePair{
		{FuelType: "Regular", Price: "$2.95"},
		{FuelType: "Premium", Price: "$3.55"},
	}, model.SourceScraped)
	require.NoError(t, err)

	prices, err := st.LatestPrices(ctx, "Avondale")
	require.NoError(t, err)

	byType := make(map[string]string, len(prices))
	for _, p := range prices {
		byType[p.FuelType] = p.Price
	}
	assert.Equal(t, "$2.95", byType["Regular"], "newest row wins per fuel type")
	assert.Equal(t, "$3.55", byType["Premium"])
	assert.Equal(t, "$3.99", byType["Diesel"], "grades missing from the newest day fall back to older rows")
}

func TestSQLite_LatestPrices_Empty(t *testing.T) {
	st := newTestStore(t)

	prices, err := st.LatestPrices(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestSQLite_PriceHistory_Filters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.AppendPrices(ctx, "Avondale", today(), "08:00:00",
		[]model.PricePair{{FuelType: "Regular", Price: "$2.89"}}, model.SourceScraped)
	require.NoError(t, err)
	_, err = st.AppendPrices(ctx, "Gilbert", today(), "08:05:00",
		[]model.PricePair{{FuelType: "Regular", Price: "$2.79"}}, model.SourceManual)
	require.NoError(t, err)
	_, err = st.AppendPrices(ctx, "Avondale", "2001-01-01", "08:00:00",
		[]model.PricePair{{FuelType: "Regular", Price: "$1.39"}}, model.SourceScraped)
	require.NoError(t, err)

	all, err := st.PriceHistory(ctx, "", 7)
	require.NoError(t, err)
	assert.Len(t, all, 2, "stale rows fall outside the window")

	avondale, err := st.PriceHistory(ctx, "Avondale", 7)
	require.NoError(t, err)
	require.Len(t, avondale, 1)
	assert.Equal(t, "Avondale", avondale[0].ClubName)
	assert.Equal(t, model.SourceScraped, avondale[0].Source)
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Migrate(ctx))
}

// --- helpers ---

func TestDedupeLatest(t *testing.T) {
	rows := []model.PricePair{
		{FuelType: "Regular", Price: "$2.95"},
		{FuelType: "Premium", Price: "$3.55"},
		{FuelType: "Regular", Price: "$3.10"},
		{FuelType: "Diesel", Price: "$3.99"},
	}
	out := dedupeLatest(rows)
	require.Len(t, out, 3)
	assert.Equal(t, "$2.95", out[0].Price, "first occurrence wins")
	assert.Equal(t, "Premium", out[1].FuelType)
	assert.Equal(t, "Diesel", out[2].FuelType)
}

func TestHistoryCutoff_NegativeDays(t *testing.T) {
	assert.Equal(t, time.Now().Format("2006-01-02"), historyCutoff(-5))
}
