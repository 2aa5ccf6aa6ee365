package store

import (
	"context"
	"sort"

	"github.com/sells-group/shopper-cli/internal/model"
)

// HistoryFilter selects price records by product ID (preferred) or a
// fuzzy name match, limited to the last Days days.
type HistoryFilter struct {
	ProductID   int64  `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Days        int    `json:"days,omitempty"`
}

// Store is the persistence interface for price tracking and purchase
// preferences.
type Store interface {
	// Price tracking
	RecordPrices(ctx context.Context, products []model.Product) (int, error)
	PriceHistory(ctx context.Context, filter HistoryFilter) ([]model.PriceRecord, error)
	PriceStats(ctx context.Context, productID int64) (*model.PriceStats, error)
	PriceAlerts(ctx context.Context, minDiscount float64) ([]model.PriceAlert, error)
	TrackedCount(ctx context.Context) (int, error)
	ClearOldPrices(ctx context.Context, days int) (int, error)

	// Preferences
	MarkPreferred(ctx context.Context, products []model.PreferredProduct) (int, error)
	IsPreferred(ctx context.Context, productID int64) (bool, error)
	ListPreferred(ctx context.Context) ([]model.PreferredProduct, error)
	PreferredCount(ctx context.Context) (int, error)
	ClearPreferred(ctx context.Context) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// sortAlerts orders alerts by discount, deepest first.
func sortAlerts(alerts []model.PriceAlert) {
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].DiscountPercent > alerts[j].DiscountPercent
	})
}
