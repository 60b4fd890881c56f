package inventory

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableQuery(t *testing.T) {
	v, err := url.ParseQuery("search=LED&category=电子元件&category=办公用品&category=电子元件&status=low&sort=quantity&dir=desc&page=2&pageSize=20")
	require.NoError(t, err)

	q, err := ParseTableQuery(v)

	require.NoError(t, err)
	assert.Equal(t, "LED", q.Criteria.SearchText)
	assert.Equal(t, []string{"电子元件", "办公用品"}, q.Criteria.Categories)
	assert.Equal(t, BucketLow, q.Criteria.Status)
	assert.Equal(t, SortQuantity, q.SortKey)
	assert.Equal(t, SortDesc, q.SortDirection)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 20, q.PageSize)

	back, err := ParseTableQuery(q.Values())
	require.NoError(t, err)
	assert.Equal(t, q, back)
}

func TestParseTableQuery_Defaults(t *testing.T) {
	q, err := ParseTableQuery(url.Values{})

	require.NoError(t, err)
	assert.Equal(t, BucketAll, q.Criteria.Status)
	assert.Equal(t, SortNone, q.SortKey)
	assert.Equal(t, SortAsc, q.SortDirection)
	assert.Empty(t, q.Values())
}

func TestParseTableQuery_Invalid(t *testing.T) {
	for _, raw := range []string{
		"status=critical",
		"sort=price",
		"dir=sideways",
		"page=-1",
		"page=abc",
		"pageSize=15",
	} {
		t.Run(raw, func(t *testing.T) {
			v, err := url.ParseQuery(raw)
			require.NoError(t, err)
			_, err = ParseTableQuery(v)
			assert.ErrorIs(t, err, ErrInvalidCriteria)
		})
	}
}

func TestManager_Query(t *testing.T) {
	mockStorage := new(MockStorage)
	manager := newTestManager(mockStorage, nil)
	ctx := context.Background()

	mockStorage.On("List", ctx).Return(SeedItems(), nil)

	result, err := manager.Query(ctx, TableQuery{
		Criteria:      Criteria{Status: BucketAll},
		SortKey:       SortQuantity,
		SortDirection: SortDesc,
		Page:          9,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.PageIndex)
	assert.Equal(t, []int64{4, 5, 13, 9, 15}, ids(result.Items))
	assert.Equal(t, SortQuantity, result.SortKey)
}
