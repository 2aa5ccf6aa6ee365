package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/shopper-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RecordPrices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.RecordPrices(ctx, []model.Product{
		{ID: 1, Name: "Letmælk", Category: "Mejeri", Price: 12.5, UnitPriceCalc: 12.5},
		{ID: 2, Name: "Rugbrød", Category: "Brød", Price: 22.0},
		{ID: 0, Name: "no id", Price: 5},
		{ID: 3, Name: "no price"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.TrackedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLiteStore_PriceHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.RecordPrices(ctx, []model.Product{{ID: 1, Name: "Letmælk", Price: 12.5}})
	require.NoError(t, err)
	_, err = s.RecordPrices(ctx, []model.Product{{ID: 1, Name: "Letmælk", Price: 11.0}})
	require.NoError(t, err)

	records, err := s.PriceHistory(ctx, HistoryFilter{ProductID: 1})
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, 11.0, records[0].Price)
	assert.Equal(t, "Letmælk", records[0].ProductName)

	records, err = s.PriceHistory(ctx, HistoryFilter{ProductName: "mælk"})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = s.PriceHistory(ctx, HistoryFilter{})
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSQLiteStore_PriceStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.RecordPrices(ctx, []model.Product{{ID: 1, Name: "Letmælk", Price: 20.0}})
	require.NoError(t, err)
	_, err = s.RecordPrices(ctx, []model.Product{{ID: 1, Name: "Letmælk", Price: 10.0}})
	require.NoError(t, err)

	st, err := s.PriceStats(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 10.0, st.CurrentPrice)
	assert.Equal(t, 10.0, st.MinPrice)
	assert.Equal(t, 20.0, st.MaxPrice)
	assert.Equal(t, 15.0, st.AvgPrice)
	assert.Equal(t, 2, st.PriceCount)
	assert.True(t, st.OnSale())
	assert.InDelta(t, 33.3, st.DiscountPercent(), 0.1)
}

func TestSQLiteStore_PriceStats_Unknown(t *testing.T) {
	s := newTestStore(t)

	st, err := s.PriceStats(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestSQLiteStore_PriceAlerts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// One product on a steep drop, one stable, one with a single record.
	_, err := s.RecordPrices(ctx, []model.Product{
		{ID: 1, Name: "Kaffe", Price: 50.0},
		{ID: 2, Name: "Te", Price: 20.0},
		{ID: 3, Name: "Kakao", Price: 30.0},
	})
	require.NoError(t, err)
	_, err = s.RecordPrices(ctx, []model.Product{
		{ID: 1, Name: "Kaffe", Price: 30.0},
		{ID: 2, Name: "Te", Price: 20.0},
	})
	require.NoError(t, err)

	alerts, err := s.PriceAlerts(ctx, 5.0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(1), alerts[0].ProductID)
	assert.Equal(t, 30.0, alerts[0].CurrentPrice)
	assert.InDelta(t, 25.0, alerts[0].DiscountPercent, 0.1)
	assert.True(t, alerts[0].Lowest)

	alerts, err = s.PriceAlerts(ctx, 50.0)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestSQLiteStore_ClearOldPrices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.RecordPrices(ctx, []model.Product{{ID: 1, Name: "Letmælk", Price: 12.5}})
	require.NoError(t, err)

	// Fresh records survive the default retention window.
	n, err := s.ClearOldPrices(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	records, err := s.PriceHistory(ctx, HistoryFilter{ProductID: 1})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSQLiteStore_Preferred(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.MarkPreferred(ctx, []model.PreferredProduct{
		{ProductID: 10, Name: "Cirkel Kaffe", Category: "Kolonial"},
		{ProductID: 11, Name: "Økologisk mælk"},
		{ProductID: 0, Name: "skipped"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	preferred, err := s.IsPreferred(ctx, 10)
	require.NoError(t, err)
	assert.True(t, preferred)

	preferred, err = s.IsPreferred(ctx, 99)
	require.NoError(t, err)
	assert.False(t, preferred)

	count, err := s.PreferredCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := s.ListPreferred(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Re-marking the same product is an update, not a duplicate.
	_, err = s.MarkPreferred(ctx, []model.PreferredProduct{{ProductID: 10, Name: "Cirkel Kaffe"}})
	require.NoError(t, err)
	count, err = s.PreferredCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, s.ClearPreferred(ctx))
	count, err = s.PreferredCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
