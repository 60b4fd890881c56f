package inventory

import (
	"net/url"
	"slices"
	"strconv"
)

// TableQuery is the stateless form of a table request: filter criteria plus
// sort and pagination settings. It round-trips through URL query values.
// テーブル要求（絞り込み・並び替え・ページング）
type TableQuery struct {
	Criteria      Criteria
	SortKey       SortKey
	SortDirection SortDirection
	Page          int // 0始まり
	PageSize      int // 0なら既定値
}

// ParseTableQuery reads search, category (repeatable), status, sort, dir,
// page and pageSize. A missing status means all.
// URLクエリからテーブル要求を解析
func ParseTableQuery(v url.Values) (TableQuery, error) {
	q := TableQuery{
		Criteria: Criteria{
			SearchText: v.Get("search"),
			Status:     BucketAll,
		},
		SortKey: SortKey(v.Get("sort")),
	}

	for _, c := range v["category"] {
		if c != "" && !slices.Contains(q.Criteria.Categories, c) {
			q.Criteria.Categories = append(q.Criteria.Categories, c)
		}
	}

	if s := v.Get("status"); s != "" {
		bucket, err := ParseStatusBucket(s)
		if err != nil {
			return TableQuery{}, err
		}
		q.Criteria.Status = bucket
	}

	if !q.SortKey.Valid() {
		return TableQuery{}, NewValidationError("sort", "並び替えできない列です", string(q.SortKey))
	}
	dir, err := ParseSortDirection(v.Get("dir"))
	if err != nil {
		return TableQuery{}, err
	}
	q.SortDirection = dir

	if s := v.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 0 {
			return TableQuery{}, NewValidationError("page", "ページ番号は0以上の整数である必要があります", s)
		}
		q.Page = page
	}
	if s := v.Get("pageSize"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil || !slices.Contains(AllowedPageSizes, size) {
			return TableQuery{}, NewValidationError("pageSize", "選択できないページサイズです", s)
		}
		q.PageSize = size
	}
	return q, nil
}

// Values encodes the query, omitting defaults
func (q TableQuery) Values() url.Values {
	v := url.Values{}
	if q.Criteria.SearchText != "" {
		v.Set("search", q.Criteria.SearchText)
	}
	for _, c := range q.Criteria.Categories {
		v.Add("category", c)
	}
	if q.Criteria.bucket() != BucketAll {
		v.Set("status", string(q.Criteria.Status))
	}
	if q.SortKey != SortNone {
		v.Set("sort", string(q.SortKey))
	}
	if q.SortDirection == SortDesc {
		v.Set("dir", string(SortDesc))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v
}

// View builds a fresh table view for the query
func (q TableQuery) View(defaultPageSize int) (*TableView, error) {
	v := NewTableView()
	size := q.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	if err := v.SetPageSize(size); err != nil {
		return nil, err
	}
	dir := q.SortDirection
	if dir == "" {
		dir = SortAsc
	}
	if err := v.SetSort(q.SortKey, dir); err != nil {
		return nil, err
	}
	if err := v.SetPageIndex(q.Page); err != nil {
		return nil, err
	}
	return v, nil
}
