package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

func ids(items []inventory.Item) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestMemoryStorage_Seeded(t *testing.T) {
	s := NewSeededMemoryStorage(nil)
	ctx := context.Background()

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, inventory.SeedItems(), items)

	trend, err := s.ListTrend(ctx)
	require.NoError(t, err)
	assert.Equal(t, inventory.SeedTrend(), trend)

	id, err := s.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(16), id)
}

func TestMemoryStorage_UpsertKeepsPosition(t *testing.T) {
	s := NewSeededMemoryStorage(nil)
	ctx := context.Background()

	item, err := s.Get(ctx, 3)
	require.NoError(t, err)
	item.Quantity = 0
	require.NoError(t, s.Upsert(ctx, item))

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 15)
	assert.Equal(t, int64(3), items[2].ID)
	assert.Equal(t, inventory.StatusOut, items[2].Status())
}

func TestMemoryStorage_ListReturnsCopy(t *testing.T) {
	s := NewSeededMemoryStorage(nil)
	ctx := context.Background()

	items, err := s.List(ctx)
	require.NoError(t, err)
	items[0].Name = "改ざん"

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "电阻 10KΩ 1/4W", got.Name)
}

func TestMemoryStorage_DeleteNeverReusesID(t *testing.T) {
	s := NewMemoryStorage(nil)
	ctx := context.Background()

	for range 3 {
		id, err := s.NextID(ctx)
		require.NoError(t, err)
		require.NoError(t, s.Upsert(ctx, &inventory.Item{ID: id, Name: "x", LastUpdated: "2024-01-01"}))
	}
	require.NoError(t, s.Delete(ctx, 3))
	require.NoError(t, s.Delete(ctx, 1))
	assert.ErrorIs(t, s.Delete(ctx, 1), inventory.ErrItemNotFound)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(items))

	got, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)

	id, err := s.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestMemoryStorage_UpsertInvalid(t *testing.T) {
	s := NewMemoryStorage(nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.Upsert(ctx, nil), inventory.ErrInvalidCriteria)
	assert.ErrorIs(t, s.Upsert(ctx, &inventory.Item{ID: 0, Name: "x"}), inventory.ErrInvalidCriteria)
	assert.ErrorIs(t, s.Upsert(ctx, &inventory.Item{ID: 1, Name: "x", Quantity: -1}), inventory.ErrInvalidCriteria)
}

func TestMemoryStorage_Trend(t *testing.T) {
	s := NewMemoryStorage(nil)
	ctx := context.Background()

	require.NoError(t, s.PutTrendPoint(ctx, inventory.TrendPoint{Date: "2024-01-03", Quantity: 3}))
	require.NoError(t, s.PutTrendPoint(ctx, inventory.TrendPoint{Date: "2024-01-01", Quantity: 1}))
	require.NoError(t, s.PutTrendPoint(ctx, inventory.TrendPoint{Date: "2024-01-02", Quantity: 2}))
	require.NoError(t, s.PutTrendPoint(ctx, inventory.TrendPoint{Date: "2024-01-02", Quantity: 20}))

	trend, err := s.ListTrend(ctx)
	require.NoError(t, err)
	assert.Equal(t, []inventory.TrendPoint{
		{Date: "2024-01-01", Quantity: 1},
		{Date: "2024-01-02", Quantity: 20},
		{Date: "2024-01-03", Quantity: 3},
	}, trend)

	assert.ErrorIs(t, s.PutTrendPoint(ctx, inventory.TrendPoint{Date: "01/02/2024"}), inventory.ErrInvalidCriteria)
}

func TestMemoryStorage_CanceledContext(t *testing.T) {
	s := NewSeededMemoryStorage(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
