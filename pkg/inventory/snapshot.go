package inventory

import (
	"context"
	"fmt"
)

// Snapshot is everything a dashboard renders, loaded from one Backend
// ダッシュボード描画用のスナップショット
type Snapshot struct {
	Items      []Item       `json:"items"`
	Categories []Category   `json:"categories"`
	LowStock   []Item       `json:"lowStock"`
	Stats      StatsSummary `json:"stats"`
	Trend      []TrendPoint `json:"trend"`
	Alerts     AlertDigest  `json:"alerts"`
}

// LoadSnapshot reads a snapshot from any backend. Backends may answer with
// empty sequences or zero-value placeholders: items with id 0 are dropped,
// missing categories and low-stock lists are derived from the items, and
// all-zero stats are recomputed while keeping the reported pending inbound.
// 任意のバックエンドからスナップショットを読み込む
func LoadSnapshot(ctx context.Context, b Backend, alertLimit int) (Snapshot, error) {
	items, err := b.GetItems(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("商品一覧の読み込みに失敗しました: %w", err)
	}
	items = dropPlaceholders(items)

	categories, err := b.GetCategories(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("カテゴリの読み込みに失敗しました: %w", err)
	}
	if len(categories) == 0 {
		categories = SummarizeCategories(items)
	}

	lowStock, err := b.GetLowStockItems(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("低在庫一覧の読み込みに失敗しました: %w", err)
	}
	lowStock = dropPlaceholders(lowStock)
	if len(lowStock) == 0 {
		lowStock = LowStockItems(items)
	}

	stats, err := b.GetStats(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("統計の読み込みに失敗しました: %w", err)
	}
	if stats.TotalSKU == 0 && stats.TotalQuantity == 0 && stats.LowStockCount == 0 {
		pending := stats.PendingInbound
		stats = ComputeStats(items)
		stats.PendingInbound = pending
	}

	trend, err := b.GetTrendData(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("在庫推移の読み込みに失敗しました: %w", err)
	}
	if trend == nil {
		trend = []TrendPoint{}
	}

	return Snapshot{
		Items:      items,
		Categories: categories,
		LowStock:   lowStock,
		Stats:      stats,
		Trend:      trend,
		Alerts:     BuildAlertDigest(items, alertLimit),
	}, nil
}

func dropPlaceholders(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID != 0 {
			out = append(out, item)
		}
	}
	return out
}
