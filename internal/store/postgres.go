package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// which keeps the postgres store unit-testable without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) AlreadyAttempted(ctx context.Context, clubName, date string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM scraping_log WHERE club_name = $1 AND scraped_date = $2`,
		clubName, date,
	).Scan(&count)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: check attempt for %s", clubName)
	}
	return count > 0, nil
}

func (s *PostgresStore) RecordAttempt(ctx context.Context, attempt model.ScrapeAttempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scraping_log (id, club_name, scraped_date, scraped_time, success, error_message, prices_found)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), attempt.ClubName, attempt.ScrapedDate, attempt.ScrapedTime,
		attempt.Success, nullable(attempt.ErrorMessage), attempt.PricesFound,
	)
	return eris.Wrapf(err, "postgres: record attempt for %s", attempt.ClubName)
}

func (s *PostgresStore) DailyStats(ctx context.Context, date string) (DailyStats, error) {
	var stats DailyStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0),
		        COUNT(DISTINCT club_name)
		 FROM scraping_log WHERE scraped_date = $1`,
		date,
	).Scan(&stats.TotalAttempts, &stats.Successful, &stats.Failed, &stats.ClubsAttempted)
	if err != nil {
		return DailyStats{}, eris.Wrap(err, "postgres: daily stats")
	}
	return stats, nil
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, profile model.ClubProfile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO clubs (id, name, address, club_url, fuel_url, created_date, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		   address = excluded.address,
		   club_url = excluded.club_url,
		   fuel_url = excluded.fuel_url,
		   last_updated = excluded.last_updated`,
		uuid.New().String(), profile.Name, profile.Address, profile.ClubURL,
		profile.FuelURL, profile.CreatedDate, profile.LastUpdated,
	)
	return eris.Wrapf(err, "postgres: upsert profile %s", profile.Name)
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]model.ClubProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, address, club_url, fuel_url, created_date, last_updated FROM clubs ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []model.ClubProfile
	for rows.Next() {
		var p model.ClubProfile
		if err := rows.Scan(&p.Name, &p.Address, &p.ClubURL, &p.FuelURL, &p.CreatedDate, &p.LastUpdated); err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}

func (s *PostgresStore) AppendPrices(ctx context.Context, clubName, date, tm string, prices []model.PricePair, source string) (int, error) {
	eligible := filterSentinels(prices)
	if len(eligible) == 0 {
		return 0, nil
	}

	for _, p := range eligible {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO price_history (id, club_name, fuel_type, price, scraped_date, scraped_time, source)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), clubName, p.FuelType, p.Price, date, tm, source,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: append price for %s", clubName)
		}
	}
	return len(eligible), nil
}

func (s *PostgresStore) LatestPrices(ctx context.Context, clubName string) ([]model.PricePair, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT fuel_type, price FROM price_history
		 WHERE club_name = $1
		 ORDER BY scraped_date DESC, scraped_time DESC
		 LIMIT $2`,
		clubName, latestScanLimit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest prices for %s", clubName)
	}
	defer rows.Close()

	var scanned []model.PricePair
	for rows.Next() {
		var p model.PricePair
		if err := rows.Scan(&p.FuelType, &p.Price); err != nil {
			return nil, eris.Wrap(err, "postgres: scan latest price")
		}
		scanned = append(scanned, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: latest prices iterate")
	}
	return dedupeLatest(scanned), nil
}

func (s *PostgresStore) PriceHistory(ctx context.Context, clubName string, days int) ([]model.PriceRecord, error) {
	cutoff := historyCutoff(days)

	query := `SELECT club_name, fuel_type, price, scraped_date, scraped_time, source
	          FROM price_history WHERE scraped_date >= $1`
	args := []any{cutoff}
	if clubName != "" {
		query += ` AND club_name = $2`
		args = append(args, clubName)
	}
	query += ` ORDER BY scraped_date DESC, scraped_time DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: price history")
	}
	defer rows.Close()

	var records []model.PriceRecord
	for rows.Next() {
		var r model.PriceRecord
		if err := rows.Scan(&r.ClubName, &r.FuelType, &r.Price, &r.ScrapedDate, &r.ScrapedTime, &r.Source); err != nil {
			return nil, eris.Wrap(err, "postgres: scan price record")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: price history iterate")
}

var _ Store = (*PostgresStore)(nil)
