package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS clubs (
	id           TEXT PRIMARY KEY,
	name         TEXT UNIQUE NOT NULL,
	address      TEXT,
	club_url     TEXT,
	fuel_url     TEXT,
	created_date TEXT,
	last_updated TEXT
);

CREATE TABLE IF NOT EXISTS price_history (
	id           TEXT PRIMARY KEY,
	club_name    TEXT NOT NULL,
	fuel_type    TEXT NOT NULL,
	price        TEXT NOT NULL,
	scraped_date TEXT NOT NULL,
	scraped_time TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT 'scraped'
);

CREATE TABLE IF NOT EXISTS scraping_log (
	id            TEXT PRIMARY KEY,
	club_name     TEXT NOT NULL,
	scraped_date  TEXT NOT NULL,
	scraped_time  TEXT NOT NULL,
	success       BOOLEAN NOT NULL,
	error_message TEXT,
	prices_found  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_price_history_club ON price_history(club_name, scraped_date DESC, scraped_time DESC);
CREATE INDEX IF NOT EXISTS idx_price_history_date ON price_history(scraped_date);
CREATE INDEX IF NOT EXISTS idx_scraping_log_club_date ON scraping_log(club_name, scraped_date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AlreadyAttempted(ctx context.Context, clubName, date string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scraping_log WHERE club_name = ? AND scraped_date = ?`,
		clubName, date,
	).Scan(&count)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: check attempt for %s", clubName)
	}
	return count > 0, nil
}

func (s *SQLiteStore) RecordAttempt(ctx context.Context, attempt model.ScrapeAttempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scraping_log (id, club_name, scraped_date, scraped_time, success, error_message, prices_found)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), attempt.ClubName, attempt.ScrapedDate, attempt.ScrapedTime,
		attempt.Success, nullable(attempt.ErrorMessage), attempt.PricesFound,
	)
	return eris.Wrapf(err, "sqlite: record attempt for %s", attempt.ClubName)
}

func (s *SQLiteStore) DailyStats(ctx context.Context, date string) (DailyStats, error) {
	var stats DailyStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0),
		        COUNT(DISTINCT club_name)
		 FROM scraping_log WHERE scraped_date = ?`,
		date,
	).Scan(&stats.TotalAttempts, &stats.Successful, &stats.Failed, &stats.ClubsAttempted)
	if err != nil {
		return DailyStats{}, eris.Wrap(err, "sqlite: daily stats")
	}
	return stats, nil
}

func (s *SQLiteStore) UpsertProfile(ctx context.Context, profile model.ClubProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clubs (id, name, address, club_url, fuel_url, created_date, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   address = excluded.address,
		   club_url = excluded.club_url,
		   fuel_url = excluded.fuel_url,
		   last_updated = excluded.last_updated`,
		uuid.New().String(), profile.Name, profile.Address, profile.ClubURL,
		profile.FuelURL, profile.CreatedDate, profile.LastUpdated,
	)
	return eris.Wrapf(err, "sqlite: upsert profile %s", profile.Name)
}

func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]model.ClubProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, address, club_url, fuel_url, created_date, last_updated FROM clubs ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var profiles []model.ClubProfile
	for rows.Next() {
		var p model.ClubProfile
		if err := rows.Scan(&p.Name, &p.Address, &p.ClubURL, &p.FuelURL, &p.CreatedDate, &p.LastUpdated); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

func (s *SQLiteStore) AppendPrices(ctx context.Context, clubName, date, tm string, prices []model.PricePair, source string) (int, error) {
	eligible := filterSentinels(prices)
	if len(eligible) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin append")
	}
	defer tx.Rollback()

	for _, p := range eligible {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO price_history (id, club_name, fuel_type, price, scraped_date, scraped_time, source)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), clubName, p.FuelType, p.Price, date, tm, source,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: append price for %s", clubName)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit append")
	}
	return len(eligible), nil
}

func (s *SQLiteStore) LatestPrices(ctx context.Context, clubName string) ([]model.PricePair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fuel_type, price FROM price_history
		 WHERE club_name = ?
		 ORDER BY scraped_date DESC, scraped_time DESC
		 LIMIT ?`,
		clubName, latestScanLimit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest prices for %s", clubName)
	}
	defer rows.Close()

	var scanned []model.PricePair
	for rows.Next() {
		var p model.PricePair
		if err := rows.Scan(&p.FuelType, &p.Price); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan latest price")
		}
		scanned = append(scanned, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: latest prices iterate")
	}
	return dedupeLatest(scanned), nil
}

func (s *SQLiteStore) PriceHistory(ctx context.Context, clubName string, days int) ([]model.PriceRecord, error) {
	cutoff := historyCutoff(days)

	query := `SELECT club_name, fuel_type, price, scraped_date, scraped_time, source
	          FROM price_history WHERE scraped_date >= ?`
	args := []any{cutoff}
	if clubName != "" {
		query += ` AND club_name = ?`
		args = append(args, clubName)
	}
	query += ` ORDER BY scraped_date DESC, scraped_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: price history")
	}
	defer rows.Close()

	var records []model.PriceRecord
	for rows.Next() {
		var r model.PriceRecord
		if err := rows.Scan(&r.ClubName, &r.FuelType, &r.Price, &r.ScrapedDate, &r.ScrapedTime, &r.Source); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan price record")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: price history iterate")
}

// historyCutoff returns the oldest scraped_date (inclusive) within a
// trailing window of the given number of days.
func historyCutoff(days int) string {
	if days < 0 {
		days = 0
	}
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*SQLiteStore)(nil)
