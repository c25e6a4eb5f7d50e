package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shortloop/shortloop/internal/analytics"
)

// Expected schema:
//
//	CREATE TABLE click_events (
//	    short_code text NOT NULL,
//	    clicked_at timestamptz NOT NULL,
//	    referrer   text NOT NULL DEFAULT 'direct',
//	    client_ip  text,
//	    country    text,
//	    user_agent text
//	);
//	CREATE INDEX click_events_code_time_idx ON click_events (short_code, clicked_at DESC);

// PostgresAnalyticsStore is a PostgreSQL implementation of analytics.Store.
// Aggregation runs as one statement so the database scans the filtered
// events once and handles memory-pressure spill itself; callers bound
// execution time through the context deadline.
type PostgresAnalyticsStore struct {
	pool       *pgxpool.Pool
	windowDays int
	topLimit   int
}

// NewPostgresAnalyticsStore creates a new PostgreSQL-backed analytics store.
func NewPostgresAnalyticsStore(pool *pgxpool.Pool, windowDays, topLimit int) *PostgresAnalyticsStore {
	return &PostgresAnalyticsStore{
		pool:       pool,
		windowDays: windowDays,
		topLimit:   topLimit,
	}
}

func (p *PostgresAnalyticsStore) LogHit(ctx context.Context, event *analytics.ClickEvent) error {
	query := `
		INSERT INTO click_events (short_code, clicked_at, referrer, client_ip, country, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	referrer := event.Referrer
	if referrer == "" {
		referrer = analytics.DirectReferrer
	}

	_, err := p.pool.Exec(ctx, query,
		event.ShortCode,
		event.Timestamp,
		referrer,
		nullableString(event.ClientIP),
		nullableString(event.Country),
		nullableString(event.UserAgent),
	)

	return err
}

const aggregateQuery = `
WITH events AS MATERIALIZED (
	SELECT clicked_at, referrer, country
	FROM click_events
	WHERE short_code = $1
)
SELECT
	(SELECT count(*) FROM events) AS total,
	(SELECT coalesce(json_agg(d ORDER BY d.date), '[]'::json) FROM (
		SELECT to_char(clicked_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS date,
		       count(*) AS count
		FROM events
		WHERE clicked_at >= $2
		GROUP BY 1
	) d) AS daily,
	(SELECT coalesce(json_agg(r), '[]'::json) FROM (
		SELECT coalesce(nullif(referrer, ''), 'direct') AS referrer,
		       count(*) AS count
		FROM events
		GROUP BY 1
		ORDER BY count DESC, referrer ASC
		LIMIT $3
	) r) AS referrers,
	(SELECT coalesce(json_agg(c), '[]'::json) FROM (
		SELECT country, count(*) AS count
		FROM events
		WHERE country IS NOT NULL AND country <> ''
		GROUP BY 1
		ORDER BY count DESC, country ASC
		LIMIT $3
	) c) AS countries
`

func (p *PostgresAnalyticsStore) Aggregate(ctx context.Context, shortCode string) (*analytics.Stats, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -(p.windowDays - 1)).Truncate(24 * time.Hour)

	var total int64

	var daily, referrers, countries []byte

	err := p.pool.QueryRow(ctx, aggregateQuery, shortCode, cutoff, p.topLimit).
		Scan(&total, &daily, &referrers, &countries)
	if err != nil {
		return nil, err
	}

	stats := &analytics.Stats{TotalClicks: total}

	if err := json.Unmarshal(daily, &stats.DailyClicks); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(referrers, &stats.TopReferrers); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(countries, &stats.TopCountries); err != nil {
		return nil, err
	}

	return stats, nil
}

// Compile-time check.
var _ analytics.Store = (*PostgresAnalyticsStore)(nil)
