// Package inventory provides the inventory view-model: status classification,
// filtering, aggregation, sorting, pagination and table state over an item store.
package inventory

import (
	"encoding/json"
)

// Item represents one stock-keeping unit in the inventory
// 在庫における1つのSKUを表現
type Item struct {
	ID          int64  `json:"id" db:"id"`                                                       // 商品ID（再利用しない）
	Name        string `json:"name" db:"name" validate:"required,max=500"`                       // 商品名
	Category    string `json:"category" db:"category" validate:"max=255"`                        // カテゴリ（自由記述）
	Quantity    int64  `json:"quantity" db:"quantity" validate:"min=0"`                          // 在庫数量
	Threshold   int64  `json:"threshold" db:"threshold" validate:"min=0"`                        // 補充閾値
	Unit        string `json:"unit" db:"unit" validate:"max=32"`                                 // 単位
	Location    string `json:"location" db:"location" validate:"max=255"`                        // 保管場所コード
	LastUpdated string `json:"lastUpdated" db:"last_updated" validate:"required,datetime=2006-01-02"` // 最終更新日（YYYY-MM-DD）
}

// Status returns the stock status derived from quantity and threshold.
// The status is never stored, so it can't drift from the numbers it describes.
// 数量と閾値から在庫ステータスを算出（保存はしない）
func (i Item) Status() Status {
	return ClassifyStatus(i.Quantity, i.Threshold)
}

// MarshalJSON encodes the item together with its derived status
// 算出済みステータスを含めてJSONエンコード
func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		Status Status `json:"status"`
	}{
		plain:  plain(i),
		Status: i.Status(),
	})
}

// Category is a denormalized category summary. ItemCount is not kept in sync
// with the store; use SummarizeCategories to recompute it.
// 非正規化されたカテゴリ集計
type Category struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	ItemCount int    `json:"itemCount" db:"item_count"`
}

// TrendPoint is one aggregate-quantity sample per day
// 日次の在庫総量サンプル
type TrendPoint struct {
	Date     string `json:"date" db:"date"`
	Quantity int64  `json:"quantity" db:"quantity"`
}

// StatsSummary holds the dashboard card figures
// ダッシュボードカードの集計値
type StatsSummary struct {
	TotalSKU       int   `json:"totalSku"`       // SKU数
	TotalQuantity  int64 `json:"totalQuantity"`  // 総在庫数量
	LowStockCount  int   `json:"lowStockCount"`  // 低在庫＋欠品数
	PendingInbound int64 `json:"pendingInbound"` // 入庫待ち（外部供給値）
}

// StatusCounts counts items per status
// ステータス別件数
type StatusCounts struct {
	Total  int `json:"total"`
	Normal int `json:"normal"`
	Low    int `json:"low"`
	Out    int `json:"out"`
}

// AlertDigest is the low-stock alert panel content
// 低在庫アラートパネルの内容
type AlertDigest struct {
	Preview  []Item `json:"preview"`  // 表示対象
	Total    int    `json:"total"`    // 低在庫＋欠品の総数
	Hidden   int    `json:"hidden"`   // 表示しきれない件数
	Critical []Item `json:"critical"` // 欠品
}

// Dashboard combines the stats cards with the alert digest
// 統計カードとアラートをまとめたダッシュボード
type Dashboard struct {
	Stats  StatsSummary `json:"stats"`
	Alerts AlertDigest  `json:"alerts"`
}

// ItemInput carries the fields of a new item; the ID is assigned by the store
// 新規商品の入力（IDはストアが採番）
type ItemInput struct {
	Name        string `json:"name" validate:"required,max=500"`
	Category    string `json:"category" validate:"max=255"`
	Quantity    int64  `json:"quantity" validate:"min=0"`
	Threshold   int64  `json:"threshold" validate:"min=0"`
	Unit        string `json:"unit" validate:"max=32"`
	Location    string `json:"location" validate:"max=255"`
	LastUpdated string `json:"lastUpdated" validate:"omitempty,datetime=2006-01-02"`
}

// ItemPatch is a partial update; nil fields are left unchanged
// 部分更新（nilのフィールドは変更しない）
type ItemPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=500"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=255"`
	Quantity    *int64  `json:"quantity,omitempty" validate:"omitempty,min=0"`
	Threshold   *int64  `json:"threshold,omitempty" validate:"omitempty,min=0"`
	Unit        *string `json:"unit,omitempty" validate:"omitempty,max=32"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	LastUpdated *string `json:"lastUpdated,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Apply copies the set fields of the patch onto item
func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Threshold != nil {
		item.Threshold = *p.Threshold
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.Location != nil {
		item.Location = *p.Location
	}
	if p.LastUpdated != nil {
		item.LastUpdated = *p.LastUpdated
	}
}

// IsEmpty reports whether the patch changes nothing
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Quantity == nil && p.Threshold == nil &&
		p.Unit == nil && p.Location == nil && p.LastUpdated == nil
}

// cloneItems returns a copy that callers may reorder freely
func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
