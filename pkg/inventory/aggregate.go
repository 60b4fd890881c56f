package inventory

import "fmt"

// SuggestedCategories is the fixed category list offered when the store has none
// ストアにカテゴリがない場合の候補
var SuggestedCategories = []string{"电子元件", "办公用品", "包装材料", "原材料", "成品"}

// DefaultAlertPreviewLimit is how many alert items the dashboard shows
const DefaultAlertPreviewLimit = 6

// ComputeStats derives the dashboard figures. PendingInbound is not derivable
// from items and is left zero for the caller to supply.
// ダッシュボード集計を算出
func ComputeStats(items []Item) StatsSummary {
	stats := StatsSummary{TotalSKU: len(items)}
	for _, item := range items {
		stats.TotalQuantity += item.Quantity
		if item.Status().NeedsRestock() {
			stats.LowStockCount++
		}
	}
	return stats
}

// LowStockItems returns items that are low or out of stock, in input order
// 低在庫・欠品の商品を返す
func LowStockItems(items []Item) []Item {
	out := make([]Item, 0)
	for _, item := range items {
		if item.Status().NeedsRestock() {
			out = append(out, item)
		}
	}
	return out
}

// CriticalItems returns out-of-stock items, in input order
// 欠品の商品を返す
func CriticalItems(items []Item) []Item {
	out := make([]Item, 0)
	for _, item := range items {
		if item.Status() == StatusOut {
			out = append(out, item)
		}
	}
	return out
}

// CountByStatus counts items per status
func CountByStatus(items []Item) StatusCounts {
	counts := StatusCounts{Total: len(items)}
	for _, item := range items {
		switch item.Status() {
		case StatusNormal:
			counts.Normal++
		case StatusLow:
			counts.Low++
		case StatusOut:
			counts.Out++
		}
	}
	return counts
}

// BuildAlertDigest returns the first limit alert items plus overflow and
// critical information. A non-positive limit shows every alert item.
// アラートパネルの内容を作成
func BuildAlertDigest(items []Item, limit int) AlertDigest {
	low := LowStockItems(items)
	preview := low
	if limit > 0 && len(low) > limit {
		preview = low[:limit]
	}
	return AlertDigest{
		Preview:  preview,
		Total:    len(low),
		Hidden:   len(low) - len(preview),
		Critical: CriticalItems(low),
	}
}

// DistinctCategories returns category names in order of first appearance
func DistinctCategories(items []Item) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}

// CategoryOptions returns the categories offered by the filter bar
func CategoryOptions(items []Item) []string {
	if cats := DistinctCategories(items); len(cats) > 0 {
		return cats
	}
	out := make([]string, len(SuggestedCategories))
	copy(out, SuggestedCategories)
	return out
}

// SummarizeCategories recomputes category summaries from items.
// IDs are assigned 1..n in order of first appearance.
// 商品からカテゴリ集計を再計算
func SummarizeCategories(items []Item) []Category {
	index := make(map[string]int)
	out := make([]Category, 0)
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(out)
			index[item.Category] = i
			out = append(out, Category{ID: int64(i + 1), Name: item.Category})
		}
		out[i].ItemCount++
	}
	return out
}

// TrendRange is the chart window
// グラフの期間
type TrendRange string

const (
	TrendRange7d  TrendRange = "7d"
	TrendRange30d TrendRange = "30d"
	TrendRange90d TrendRange = "90d"
)

// Days returns the number of samples covered by the range
func (r TrendRange) Days() (int, error) {
	switch r {
	case TrendRange7d:
		return 7, nil
	case TrendRange30d:
		return 30, nil
	case TrendRange90d:
		return 90, nil
	}
	return 0, NewValidationError("range", "無効な期間です", string(r))
}

// TrendWindow returns the last samples covered by the range
// 指定期間の末尾サンプルを返す
func TrendWindow(points []TrendPoint, r TrendRange) ([]TrendPoint, error) {
	days, err := r.Days()
	if err != nil {
		return nil, err
	}
	start := 0
	if len(points) > days {
		start = len(points) - days
	}
	out := make([]TrendPoint, len(points)-start)
	copy(out, points[start:])
	return out, nil
}

// TotalQuantityPoint samples the aggregate quantity of items for a date
func TotalQuantityPoint(items []Item, date string) TrendPoint {
	return TrendPoint{Date: date, Quantity: ComputeStats(items).TotalQuantity}
}

// String implements fmt.Stringer
func (s StatsSummary) String() string {
	return fmt.Sprintf("sku=%d quantity=%d low=%d inbound=%d", s.TotalSKU, s.TotalQuantity, s.LowStockCount, s.PendingInbound)
}
