package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/shopper-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. This is the
// default backend; the database lives in the user's home directory.
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
CREATE TABLE IF NOT EXISTS products (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT,
	unit_size  TEXT,
	first_seen DATETIME NOT NULL,
	last_seen  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS prices (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id  INTEGER NOT NULL REFERENCES products(id),
	price       REAL NOT NULL,
	unit_price  REAL,
	recorded_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS preferred (
	product_id INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT,
	synced_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prices_product_id ON prices(product_id);
CREATE INDEX IF NOT EXISTS idx_prices_recorded_at ON prices(recorded_at);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordPrices(ctx context.Context, products []model.Product) (int, error) {
	now := time.Now().UTC()
	count := 0
	for _, p := range products {
		if p.ID == 0 || p.Price <= 0 {
			continue
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO products (id, name, category, unit_size, first_seen, last_seen)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				category = excluded.category,
				unit_size = excluded.unit_size,
				last_seen = excluded.last_seen`,
			p.ID, p.Name, p.Category, p.UnitSize, now, now,
		)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert product %d", p.ID)
		}

		_, err = s.db.ExecContext(ctx,
			`INSERT INTO prices (product_id, price, unit_price, recorded_at) VALUES (?, ?, ?, ?)`,
			p.ID, p.Price, nullFloat(p.UnitPriceCalc), now,
		)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: insert price for %d", p.ID)
		}
		count++
	}
	return count, nil
}

func (s *SQLiteStore) PriceHistory(ctx context.Context, filter HistoryFilter) ([]model.PriceRecord, error) {
	days := filter.Days
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var rows *sql.Rows
	var err error
	switch {
	case filter.ProductID != 0:
		rows, err = s.db.QueryContext(ctx,
			`SELECT p.product_id, pr.name, p.price, p.unit_price, p.recorded_at
			 FROM prices p JOIN products pr ON p.product_id = pr.id
			 WHERE p.product_id = ? AND p.recorded_at >= ?
			 ORDER BY p.recorded_at DESC`,
			filter.ProductID, cutoff,
		)
	case filter.ProductName != "":
		rows, err = s.db.QueryContext(ctx,
			`SELECT p.product_id, pr.name, p.price, p.unit_price, p.recorded_at
			 FROM prices p JOIN products pr ON p.product_id = pr.id
			 WHERE pr.name LIKE ? AND p.recorded_at >= ?
			 ORDER BY p.recorded_at DESC`,
			"%"+filter.ProductName+"%", cutoff,
		)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: price history")
	}
	defer rows.Close()

	var records []model.PriceRecord
	for rows.Next() {
		var r model.PriceRecord
		var unitPrice sql.NullFloat64
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Price, &unitPrice, &r.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan price record")
		}
		r.UnitPrice = unitPrice.Float64
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: price history iterate")
}

func (s *SQLiteStore) PriceStats(ctx context.Context, productID int64) (*model.PriceStats, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT
			pr.id, pr.name,
			(SELECT price FROM prices WHERE product_id = pr.id ORDER BY recorded_at DESC LIMIT 1),
			MIN(p.price), MAX(p.price), AVG(p.price), COUNT(p.id),
			pr.first_seen, pr.last_seen
		 FROM products pr JOIN prices p ON pr.id = p.product_id
		 WHERE pr.id = ?
		 GROUP BY pr.id`,
		productID,
	)

	var st model.PriceStats
	err := row.Scan(&st.ProductID, &st.ProductName, &st.CurrentPrice,
		&st.MinPrice, &st.MaxPrice, &st.AvgPrice, &st.PriceCount,
		&st.FirstSeen, &st.LastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: price stats %d", productID)
	}
	return &st, nil
}

func (s *SQLiteStore) PriceAlerts(ctx context.Context, minDiscount float64) ([]model.PriceAlert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT
			pr.id, pr.name,
			(SELECT price FROM prices WHERE product_id = pr.id ORDER BY recorded_at DESC LIMIT 1),
			MIN(p.price), AVG(p.price)
		 FROM products pr JOIN prices p ON pr.id = p.product_id
		 GROUP BY pr.id
		 HAVING COUNT(p.id) >= 2`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: price alerts")
	}
	defer rows.Close()

	var alerts []model.PriceAlert
	for rows.Next() {
		var a model.PriceAlert
		if err := rows.Scan(&a.ProductID, &a.ProductName, &a.CurrentPrice, &a.MinPrice, &a.AvgPrice); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan alert")
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
		return nil, eris.Wrap(err, "sqlite: price alerts iterate")
	}
	sortAlerts(alerts)
	return alerts, nil
}

func (s *SQLiteStore) TrackedCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: tracked count")
}

func (s *SQLiteStore) ClearOldPrices(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.db.ExecContext(ctx, `DELETE FROM prices WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear old prices")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) MarkPreferred(ctx context.Context, products []model.PreferredProduct) (int, error) {
	count := 0
	for _, p := range products {
		if p.ProductID == 0 {
			continue
		}
		syncedAt := p.SyncedAt
		if syncedAt.IsZero() {
			syncedAt = time.Now().UTC()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO preferred (product_id, name, category, synced_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(product_id) DO UPDATE SET
				name = excluded.name,
				category = excluded.category,
				synced_at = excluded.synced_at`,
			p.ProductID, p.Name, p.Category, syncedAt,
		)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: mark preferred %d", p.ProductID)
		}
		count++
	}
	return count, nil
}

func (s *SQLiteStore) IsPreferred(ctx context.Context, productID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM preferred WHERE product_id = ?`, productID,
	).Scan(&n)
	return n > 0, eris.Wrap(err, "sqlite: is preferred")
}

func (s *SQLiteStore) ListPreferred(ctx context.Context) ([]model.PreferredProduct, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, name, category, synced_at FROM preferred ORDER BY synced_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list preferred")
	}
	defer rows.Close()

	var out []model.PreferredProduct
	for rows.Next() {
		var p model.PreferredProduct
		var category sql.NullString
		if err := rows.Scan(&p.ProductID, &p.Name, &category, &p.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan preferred")
		}
		p.Category = category.String
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list preferred iterate")
}

func (s *SQLiteStore) PreferredCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM preferred`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: preferred count")
}

func (s *SQLiteStore) ClearPreferred(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM preferred`)
	return eris.Wrap(err, "sqlite: clear preferred")
}

// helpers

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v > 0}
}
