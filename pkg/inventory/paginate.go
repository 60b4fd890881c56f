package inventory

import "fmt"

// DefaultPageSize is the initial table page size
const DefaultPageSize = 10

// AllowedPageSizes are the page sizes the table offers
var AllowedPageSizes = []int{10, 20, 30, 40, 50}

// Page is one page of a sequence
// シーケンスの1ページ
type Page struct {
	Items     []Item `json:"items"`
	PageIndex int    `json:"pageIndex"` // 補正後のページ番号（0始まり）
	PageSize  int    `json:"pageSize"`
	PageCount int    `json:"pageCount"`
	Total     int    `json:"total"`
}

// PageCount returns ceil(total/pageSize)
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPageIndex keeps index inside [0, pageCount-1]
// ページ番号を有効範囲に補正
func ClampPageIndex(index, pageCount int) int {
	if index >= pageCount {
		index = pageCount - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

// PaginateItems returns the requested page. pageIndex is clamped to the last
// page so a narrowed result set never points past its end.
// 指定ページを返す（ページ番号は最終ページに補正）
func PaginateItems(items []Item, pageIndex, pageSize int) (Page, error) {
	if pageSize < 1 {
		return Page{}, NewValidationError("pageSize", "ページサイズは1以上である必要があります", fmt.Sprintf("%d", pageSize))
	}
	if pageIndex < 0 {
		return Page{}, NewValidationError("page", "ページ番号は0以上である必要があります", fmt.Sprintf("%d", pageIndex))
	}

	total := len(items)
	count := PageCount(total, pageSize)
	index := ClampPageIndex(pageIndex, count)

	start := index * pageSize
	end := min(start+pageSize, total)
	page := make([]Item, end-start)
	copy(page, items[start:end])

	return Page{
		Items:     page,
		PageIndex: index,
		PageSize:  pageSize,
		PageCount: count,
		Total:     total,
	}, nil
}
