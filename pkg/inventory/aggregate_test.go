package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestComputeStats_Seed(t *testing.T) {
	items := SeedItems()

	var sum int64
	for _, item := range items {
		sum += item.Quantity
	}

	stats := ComputeStats(items)
	assert.Equal(t, 15, stats.TotalSKU)
	assert.Equal(t, sum, stats.TotalQuantity)
	assert.Equal(t, int64(10815), stats.TotalQuantity)
	assert.Equal(t, 6, stats.LowStockCount)
	assert.Zero(t, stats.PendingInbound)
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, StatsSummary{}, ComputeStats(nil))
	assert.Equal(t, StatusCounts{}, CountByStatus(nil))
	assert.Empty(t, LowStockItems(nil))
	assert.NotNil(t, LowStockItems(nil))
	assert.Empty(t, SummarizeCategories(nil))
}

func TestComputeStats_Additive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SliceOf(genItem()).Draw(t, "a")
		b := rapid.SliceOf(genItem()).Draw(t, "b")

		joined := append(append([]Item{}, a...), b...)
		assert.Equal(t,
			ComputeStats(a).TotalQuantity+ComputeStats(b).TotalQuantity,
			ComputeStats(joined).TotalQuantity,
		)
		assert.Equal(t,
			ComputeStats(a).LowStockCount+ComputeStats(b).LowStockCount,
			ComputeStats(joined).LowStockCount,
		)
	})
}

func TestLowStockItems_Seed(t *testing.T) {
	items := SeedItems()
	assert.Equal(t, []int64{2, 4, 5, 9, 13, 15}, ids(LowStockItems(items)))
	assert.Equal(t, []int64{9, 15}, ids(CriticalItems(items)))
	assert.Equal(t, StatusCounts{Total: 15, Normal: 9, Low: 4, Out: 2}, CountByStatus(items))
}

func TestBuildAlertDigest(t *testing.T) {
	items := SeedItems()

	digest := BuildAlertDigest(items, 4)
	assert.Equal(t, []int64{2, 4, 5, 9}, ids(digest.Preview))
	assert.Equal(t, 6, digest.Total)
	assert.Equal(t, 2, digest.Hidden)
	assert.Equal(t, []int64{9, 15}, ids(digest.Critical))

	all := BuildAlertDigest(items, 0)
	assert.Len(t, all.Preview, 6)
	assert.Zero(t, all.Hidden)
}

func TestCategoryOptions(t *testing.T) {
	assert.Equal(t, []string{"电子元件", "办公用品", "包装材料"}, CategoryOptions(SeedItems()))
	assert.Equal(t, SuggestedCategories, CategoryOptions(nil))
}

func TestTrendWindow(t *testing.T) {
	points := SeedTrend()

	week, err := TrendWindow(points, TrendRange7d)
	require.NoError(t, err)
	assert.Equal(t, points, week)

	short, err := TrendWindow(points[:3], TrendRange30d)
	require.NoError(t, err)
	assert.Len(t, short, 3)

	long := make([]TrendPoint, 40)
	for i := range long {
		long[i] = TrendPoint{Date: "2024-01-01", Quantity: int64(i)}
	}
	month, err := TrendWindow(long, TrendRange30d)
	require.NoError(t, err)
	require.Len(t, month, 30)
	assert.Equal(t, int64(10), month[0].Quantity)

	_, err = TrendWindow(points, TrendRange("365d"))
	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestStatsSummary_String(t *testing.T) {
	s := StatsSummary{TotalSKU: 15, TotalQuantity: 10815, LowStockCount: 6, PendingInbound: 5}
	assert.Equal(t, "sku=15 quantity=10815 low=6 inbound=5", s.String())
}
