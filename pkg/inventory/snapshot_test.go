package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend はプレースホルダーを返すバックエンド
type stubBackend struct {
	items      []Item
	categories []Category
	lowStock   []Item
	stats      StatsSummary
	trend      []TrendPoint
	err        error
}

func (b *stubBackend) GetItems(context.Context) ([]Item, error) { return b.items, b.err }
func (b *stubBackend) GetCategories(context.Context) ([]Category, error) {
	return b.categories, nil
}
func (b *stubBackend) GetLowStockItems(context.Context) ([]Item, error) { return b.lowStock, nil }
func (b *stubBackend) UpdateItem(context.Context, int64, ItemPatch) (*Item, error) {
	return nil, ErrBackendUnavailable
}
func (b *stubBackend) AddItem(context.Context, ItemInput) (*Item, error) {
	return nil, ErrBackendUnavailable
}
func (b *stubBackend) DeleteItem(context.Context, int64) error            { return ErrBackendUnavailable }
func (b *stubBackend) GetStats(context.Context) (StatsSummary, error)     { return b.stats, nil }
func (b *stubBackend) GetTrendData(context.Context) ([]TrendPoint, error) { return b.trend, nil }

func TestLoadSnapshot_Placeholders(t *testing.T) {
	backend := &stubBackend{
		items:    append(SeedItems(), Item{}),
		lowStock: []Item{{}},
		stats:    StatsSummary{PendingInbound: 5},
	}

	snap, err := LoadSnapshot(context.Background(), backend, DefaultAlertPreviewLimit)

	require.NoError(t, err)
	assert.Len(t, snap.Items, 15)
	assert.Len(t, snap.Categories, 3)
	assert.Equal(t, []int64{2, 4, 5, 9, 13, 15}, ids(snap.LowStock))
	assert.Equal(t, StatsSummary{TotalSKU: 15, TotalQuantity: 10815, LowStockCount: 6, PendingInbound: 5}, snap.Stats)
	assert.NotNil(t, snap.Trend)
	assert.Empty(t, snap.Trend)
	assert.Len(t, snap.Alerts.Preview, 6)
}

func TestLoadSnapshot_KeepsBackendValues(t *testing.T) {
	backend := &stubBackend{
		items:      SeedItems(),
		categories: demoCategories(),
		lowStock:   SeedItems()[8:9],
		stats:      StatsSummary{TotalSKU: 99, TotalQuantity: 1, LowStockCount: 1, PendingInbound: 2},
		trend:      SeedTrend(),
	}

	snap, err := LoadSnapshot(context.Background(), backend, 2)

	require.NoError(t, err)
	assert.Equal(t, demoCategories(), snap.Categories)
	assert.Equal(t, []int64{9}, ids(snap.LowStock))
	assert.Equal(t, 99, snap.Stats.TotalSKU)
	assert.Equal(t, SeedTrend(), snap.Trend)
	assert.Equal(t, 4, snap.Alerts.Hidden)
}

func TestLoadSnapshot_Empty(t *testing.T) {
	snap, err := LoadSnapshot(context.Background(), &stubBackend{}, DefaultAlertPreviewLimit)

	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Categories)
	assert.Equal(t, StatsSummary{}, snap.Stats)
}

func TestLoadSnapshot_Error(t *testing.T) {
	_, err := LoadSnapshot(context.Background(), &stubBackend{err: ErrBackendUnavailable}, 6)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

func TestLoadSnapshot_FromManager(t *testing.T) {
	mockStorage := new(MockStorage)
	manager := newTestManager(mockStorage, nil)
	ctx := context.Background()

	mockStorage.On("List", ctx).Return(SeedItems(), nil)
	mockStorage.On("ListTrend", ctx).Return(SeedTrend(), nil)

	snap, err := LoadSnapshot(ctx, manager, DefaultAlertPreviewLimit)

	require.NoError(t, err)
	assert.Equal(t, int64(5), snap.Stats.PendingInbound)
	assert.Len(t, snap.Trend, 7)
	assert.Len(t, snap.Categories, 3)
}

// demoCategories is a denormalized category list whose counts do not match
// SeedItems, as a backend may report it.
func demoCategories() []Category {
	return []Category{
		{ID: 1, Name: "电子元件", ItemCount: 12},
		{ID: 2, Name: "办公用品", ItemCount: 8},
		{ID: 3, Name: "包装材料", ItemCount: 6},
		{ID: 4, Name: "原材料", ItemCount: 15},
		{ID: 5, Name: "成品", ItemCount: 10},
	}
}
