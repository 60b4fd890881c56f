package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateItem(t *testing.T) {
	for _, item := range SeedItems() {
		assert.NoError(t, ValidateItem(&item), item.Name)
	}

	tests := []struct {
		name  string
		item  *Item
		field string
	}{
		{"nil", nil, "item"},
		{"ID0", &Item{Name: "x", LastUpdated: "2024-01-01"}, "id"},
		{"空の商品名", &Item{ID: 1, Name: " ", LastUpdated: "2024-01-01"}, "name"},
		{"負の数量", &Item{ID: 1, Name: "x", Quantity: -1, LastUpdated: "2024-01-01"}, "quantity"},
		{"日付形式", &Item{ID: 1, Name: "x", LastUpdated: "2024/01/01"}, "lastUpdated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(tt.item)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, ErrInvalidCriteria)
		})
	}
}

func TestValidateItemPatch(t *testing.T) {
	blank := ""
	neg := int64(-5)
	bad := "yesterday"
	name := "新名称"

	assert.Error(t, ValidateItemPatch(&ItemPatch{}))
	assert.Error(t, ValidateItemPatch(&ItemPatch{Name: &blank}))
	assert.Error(t, ValidateItemPatch(&ItemPatch{Threshold: &neg}))
	assert.Error(t, ValidateItemPatch(&ItemPatch{LastUpdated: &bad}))
	assert.NoError(t, ValidateItemPatch(&ItemPatch{Name: &name}))
}

func TestItemPatch_Apply(t *testing.T) {
	item := SeedItems()[0]
	qty := int64(10)
	loc := "Z-99-99"

	ItemPatch{Quantity: &qty, Location: &loc}.Apply(&item)

	assert.Equal(t, int64(10), item.Quantity)
	assert.Equal(t, "Z-99-99", item.Location)
	assert.Equal(t, "电阻 10KΩ 1/4W", item.Name)
	assert.Equal(t, StatusLow, item.Status())
}

func TestValidateTrendPoint(t *testing.T) {
	assert.NoError(t, ValidateTrendPoint(TrendPoint{Date: "2024-01-15", Quantity: 9050}))
	assert.ErrorIs(t, ValidateTrendPoint(TrendPoint{Date: "2024-13-01"}), ErrInvalidCriteria)
	assert.ErrorIs(t, ValidateTrendPoint(TrendPoint{Date: "2024-01-15", Quantity: -1}), ErrInvalidCriteria)
}
