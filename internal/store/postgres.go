package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/shopper-cli/internal/db"
	"github.com/sells-group/shopper-cli/internal/model"
)

// PostgresStore implements Store using pgxpool, for shared or hosted
// deployments where several machines track the same price history.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot paths of a matching run.
var preparedStatements = map[string]string{
	"is_preferred":    `SELECT COUNT(*) FROM preferred WHERE product_id = $1`,
	"insert_price":    `INSERT INTO prices (product_id, price, unit_price, recorded_at) VALUES ($1, $2, $3, $4)`,
	"tracked_count":   `SELECT COUNT(*) FROM products`,
	"preferred_count": `SELECT COUNT(*) FROM preferred`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
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
CREATE TABLE IF NOT EXISTS products (
	id         BIGINT PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT,
	unit_size  TEXT,
	first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS prices (
	id          BIGSERIAL PRIMARY KEY,
	product_id  BIGINT NOT NULL REFERENCES products(id),
	price       DOUBLE PRECISION NOT NULL,
	unit_price  DOUBLE PRECISION,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS preferred (
	product_id BIGINT PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT,
	synced_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_prices_product_id ON prices(product_id);
CREATE INDEX IF NOT EXISTS idx_prices_recorded_at ON prices(recorded_at);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// RecordPrices upserts the product snapshot in bulk and appends one price
// row per product via COPY, one round trip each regardless of batch size.
func (s *PostgresStore) RecordPrices(ctx context.Context, products []model.Product) (int, error) {
	now := time.Now().UTC()

	var productRows, priceRows [][]any
	for _, p := range products {
		if p.ID == 0 || p.Price <= 0 {
			continue
		}
		productRows = append(productRows, []any{p.ID, p.Name, p.Category, p.UnitSize, now, now})
		priceRows = append(priceRows, []any{p.ID, p.Price, nullableFloat(p.UnitPriceCalc), now})
	}
	if len(productRows) == 0 {
		return 0, nil
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "products",
		Columns:      []string{"id", "name", "category", "unit_size", "first_seen", "last_seen"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"name", "category", "unit_size", "last_seen"},
	}, productRows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert products")
	}

	n, err := db.CopyFrom(ctx, s.pool, "prices",
		[]string{"product_id", "price", "unit_price", "recorded_at"}, priceRows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: copy prices")
	}
	return int(n), nil
}

func (s *PostgresStore) PriceHistory(ctx context.Context, filter HistoryFilter) ([]model.PriceRecord, error) {
	days := filter.Days
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var rows pgx.Rows
	var err error
	switch {
	case filter.ProductID != 0:
		rows, err = s.pool.Query(ctx,
			`SELECT p.product_id, pr.name, p.price, COALESCE(p.unit_price, 0), p.recorded_at
			 FROM prices p JOIN products pr ON p.product_id = pr.id
			 WHERE p.product_id = $1 AND p.recorded_at >= $2
			 ORDER BY p.recorded_at DESC`,
			filter.ProductID, cutoff,
		)
	case filter.ProductName != "":
		rows, err = s.pool.Query(ctx,
			`SELECT p.product_id, pr.name, p.price, COALESCE(p.unit_price, 0), p.recorded_at
			 FROM prices p JOIN products pr ON p.product_id = pr.id
			 WHERE pr.name ILIKE $1 AND p.recorded_at >= $2
			 ORDER BY p.recorded_at DESC`,
			"%"+filter.ProductName+"%", cutoff,
		)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: price history")
	}
	defer rows.Close()

	var records []model.PriceRecord
	for rows.Next() {
		var r model.PriceRecord
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Price, &r.UnitPrice, &r.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan price record")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: price history iterate")
}

func (s *PostgresStore) PriceStats(ctx context.Context, productID int64) (*model.PriceStats, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT
			pr.id, pr.name,
			(SELECT price FROM prices WHERE product_id = pr.id ORDER BY recorded_at DESC LIMIT 1),
			MIN(p.price), MAX(p.price), AVG(p.price), COUNT(p.id),
			pr.first_seen, pr.last_seen
		 FROM products pr JOIN prices p ON pr.id = p.product_id
		 WHERE pr.id = $1
		 GROUP BY pr.id`,
		productID,
	)

	var st model.PriceStats
	err := row.Scan(&st.ProductID, &st.ProductName, &st.CurrentPrice,
		&st.MinPrice, &st.MaxPrice, &st.AvgPrice, &st.PriceCount,
		&st.FirstSeen, &st.LastSeen)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: price stats %d", productID)
	}
	return &st, nil
}

func (s *PostgresStore) PriceAlerts(ctx context.Context, minDiscount float64) ([]model.PriceAlert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT
			pr.id, pr.name,
			(SELECT price FROM prices WHERE product_id = pr.id ORDER BY recorded_at DESC LIMIT 1),
			MIN(p.price), AVG(p.price)
		 FROM products pr JOIN prices p ON pr.id = p.product_id
		 GROUP BY pr.id
		 HAVING COUNT(p.id) >= 2`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: price alerts")
	}
	defer rows.Close()

	var alerts []model.PriceAlert
	for rows.Next() {
		var a model.PriceAlert
		if err := rows.Scan(&a.ProductID, &a.ProductName, &a.CurrentPrice, &a.MinPrice, &a.AvgPrice); err != nil {
			return nil, eris.Wrap(err, "postgres: scan alert")
		}
		if a.AvgPrice <= 0 {
			continue
		}
		a.DiscountPercent = (a.AvgPrice - a.CurrentPrice) / a.AvgPrice * 100
		if a.DiscountPercent < minDiscount {
			continue
		}
		a.Lowest = a.CurrentPrice <= a.MinPrice
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: price alerts iterate")
	}
	sortAlerts(alerts)
	return alerts, nil
}

func (s *PostgresStore) TrackedCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, eris.Wrap(err, "postgres: tracked count")
}

func (s *PostgresStore) ClearOldPrices(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	tag, err := s.pool.Exec(ctx, `DELETE FROM prices WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: clear old prices")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) MarkPreferred(ctx context.Context, products []model.PreferredProduct) (int, error) {
	now := time.Now().UTC()

	var rows [][]any
	for _, p := range products {
		if p.ProductID == 0 {
			continue
		}
		syncedAt := p.SyncedAt
		if syncedAt.IsZero() {
			syncedAt = now
		}
		rows = append(rows, []any{p.ProductID, p.Name, p.Category, syncedAt})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "preferred",
		Columns:      []string{"product_id", "name", "category", "synced_at"},
		ConflictKeys: []string{"product_id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: mark preferred")
	}
	return int(n), nil
}

func (s *PostgresStore) IsPreferred(ctx context.Context, productID int64) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM preferred WHERE product_id = $1`, productID,
	).Scan(&n)
	return n > 0, eris.Wrap(err, "postgres: is preferred")
}

func (s *PostgresStore) ListPreferred(ctx context.Context) ([]model.PreferredProduct, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product_id, name, COALESCE(category, ''), synced_at FROM preferred ORDER BY synced_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list preferred")
	}
	defer rows.Close()

	var out []model.PreferredProduct
	for rows.Next() {
		var p model.PreferredProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Category, &p.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan preferred")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list preferred iterate")
}

func (s *PostgresStore) PreferredCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM preferred`).Scan(&n)
	return n, eris.Wrap(err, "postgres: preferred count")
}

func (s *PostgresStore) ClearPreferred(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM preferred`)
	return eris.Wrap(err, "postgres: clear preferred")
}

// nullableFloat maps a zero unit price to NULL so averages stay honest.
func nullableFloat(v float64) any {
	if v <= 0 {
		return nil
	}
	return v
}
