package storage

import (
	"context"
	"fmt"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

// SeedIfEmpty loads items and trend samples into st when it holds no items.
// It reports whether anything was written.
// 空のストレージに初期データを投入
func SeedIfEmpty(ctx context.Context, st inventory.Storage, items []inventory.Item, trend []inventory.TrendPoint) (bool, error) {
	existing, err := st.List(ctx)
	if err != nil {
		return false, fmt.Errorf("既存データの確認に失敗しました: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	for i := range items {
		if err := st.Upsert(ctx, &items[i]); err != nil {
			return false, fmt.Errorf("初期商品の投入に失敗しました (id=%d): %w", items[i].ID, err)
		}
	}
	for _, p := range trend {
		if err := st.PutTrendPoint(ctx, p); err != nil {
			return false, fmt.Errorf("初期推移の投入に失敗しました (%s): %w", p.Date, err)
		}
	}
	return true, nil
}
