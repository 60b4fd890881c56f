package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortItems(t *testing.T) {
	items := SeedItems()

	tests := []struct {
		name string
		key  SortKey
		dir  SortDirection
		want []int64
	}{
		{"並び替えなし", SortNone, SortAsc, ids(items)},
		{"数量昇順", SortQuantity, SortAsc, []int64{9, 15, 13, 5, 4, 10, 2, 14, 7, 6, 11, 8, 1, 3, 12}},
		{"数量降順", SortQuantity, SortDesc, []int64{12, 3, 1, 8, 6, 11, 7, 2, 14, 10, 4, 5, 13, 9, 15}},
		{"ステータス昇順", SortStatus, SortAsc, []int64{9, 15, 2, 4, 5, 13, 1, 3, 6, 7, 8, 10, 11, 12, 14}},
		{"ID降順", SortID, SortDesc, []int64{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}},
		{"保管場所昇順", SortLocation, SortAsc, []int64{1, 2, 3, 15, 4, 12, 11, 5, 6, 7, 13, 8, 9, 10, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SortItems(items, tt.key, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSortItems_DoesNotMutateInput(t *testing.T) {
	items := SeedItems()
	_, err := SortItems(items, SortName, SortDesc)
	require.NoError(t, err)
	assert.Equal(t, SeedItems(), items)
}

func TestSortItems_Invalid(t *testing.T) {
	_, err := SortItems(SeedItems(), SortKey("price"), SortAsc)
	assert.ErrorIs(t, err, ErrInvalidCriteria)

	_, err = SortItems(SeedItems(), SortName, SortDirection("up"))
	assert.ErrorIs(t, err, ErrInvalidCriteria)

	dir, err := ParseSortDirection("")
	require.NoError(t, err)
	assert.Equal(t, SortAsc, dir)
}
