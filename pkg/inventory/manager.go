package inventory

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Manager serves the inventory view-model on top of a Storage
// Storage上で在庫ビューモデルを提供
type Manager struct {
	storage  Storage       // ストレージ層
	observer StatsObserver // 集計通知先（任意）
	logger   *zap.Logger   // ログ
	config   *Config       // 設定
	now      func() time.Time
}

// すべてのインターフェースを実装することを明示
var _ Backend = (*Manager)(nil)

// Config holds configuration for the inventory manager
// 在庫マネージャーの設定を保持
type Config struct {
	PendingInbound    int64 `yaml:"pending_inbound"`     // 入庫待ち数（外部供給値）
	AlertPreviewLimit int   `yaml:"alert_preview_limit"` // アラート表示件数
	DefaultPageSize   int   `yaml:"default_page_size"`   // 既定ページサイズ
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *Config {
	return &Config{
		PendingInbound:    5,
		AlertPreviewLimit: DefaultAlertPreviewLimit,
		DefaultPageSize:   DefaultPageSize,
	}
}

// NewManager creates a new inventory manager
// 新しい在庫マネージャーを作成
func NewManager(storage Storage, observer StatsObserver, logger *zap.Logger, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		storage:  storage,
		observer: observer,
		logger:   logger,
		config:   config,
		now:      time.Now,
	}
}

// NewTableView creates a table view using the configured page size
func (m *Manager) NewTableView() *TableView {
	v := NewTableView()
	if err := v.SetPageSize(m.config.DefaultPageSize); err != nil {
		m.logger.Warn("既定ページサイズが無効なため10を使用します", zap.Int("page_size", m.config.DefaultPageSize))
	}
	return v
}

// GetItems returns every item in store order
// 全商品を取得
func (m *Manager) GetItems(ctx context.Context) ([]Item, error) {
	items, err := m.storage.List(ctx)
	if err != nil {
		return nil, NewStorageError("list_items", "商品一覧取得に失敗しました", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// GetItem returns one item
// 商品を取得
func (m *Manager) GetItem(ctx context.Context, id int64) (*Item, error) {
	item, err := m.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, NewStorageError("get_item", "商品取得に失敗しました", err)
	}
	return item, nil
}

// AddItem creates an item with a freshly allocated id
// 新しいIDで商品を作成
func (m *Manager) AddItem(ctx context.Context, in ItemInput) (*Item, error) {
	if in.LastUpdated == "" {
		in.LastUpdated = m.today()
	}
	if err := ValidateItemInput(&in); err != nil {
		return nil, err
	}

	id, err := m.storage.NextID(ctx)
	if err != nil {
		return nil, NewStorageError("next_id", "商品ID採番に失敗しました", err)
	}

	item := &Item{
		ID:          id,
		Name:        in.Name,
		Category:    in.Category,
		Quantity:    in.Quantity,
		Threshold:   in.Threshold,
		Unit:        in.Unit,
		Location:    in.Location,
		LastUpdated: in.LastUpdated,
	}
	if err := m.storage.Upsert(ctx, item); err != nil {
		return nil, NewStorageError("create_item", "商品作成に失敗しました", err)
	}

	m.logger.Info("商品作成完了",
		zap.Int64("item_id", item.ID),
		zap.String("name", item.Name),
		zap.String("status", string(item.Status())),
	)
	return item, nil
}

// UpdateItem applies a partial update. lastUpdated is stamped with today's
// date unless the patch sets it.
// 部分更新を適用
func (m *Manager) UpdateItem(ctx context.Context, id int64, patch ItemPatch) (*Item, error) {
	if err := ValidateItemPatch(&patch); err != nil {
		return nil, err
	}

	item, err := m.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := item.Status()
	patch.Apply(item)
	if patch.LastUpdated == nil {
		item.LastUpdated = m.today()
	}
	if err := ValidateItem(item); err != nil {
		return nil, err
	}

	if err := m.storage.Upsert(ctx, item); err != nil {
		return nil, NewStorageError("update_item", "商品更新に失敗しました", err)
	}

	m.logger.Info("商品更新完了",
		zap.Int64("item_id", id),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(item.Status())),
	)
	if item.Status() != oldStatus && item.Status().NeedsRestock() {
		m.logger.Warn("低在庫アラート",
			zap.Int64("item_id", id),
			zap.String("name", item.Name),
			zap.Int64("quantity", item.Quantity),
			zap.Int64("threshold", item.Threshold),
		)
	}
	return item, nil
}

// SaveItem inserts or replaces a complete item
// 商品を登録または置換
func (m *Manager) SaveItem(ctx context.Context, item *Item) error {
	if err := ValidateItem(item); err != nil {
		return err
	}
	if err := m.storage.Upsert(ctx, item); err != nil {
		return NewStorageError("upsert_item", "商品保存に失敗しました", err)
	}
	m.logger.Debug("商品保存完了", zap.Int64("item_id", item.ID))
	return nil
}

// DeleteItem removes an item; its id is never reissued
// 商品を削除（IDは再利用しない）
func (m *Manager) DeleteItem(ctx context.Context, id int64) error {
	if err := m.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return NewStorageError("delete_item", "商品削除に失敗しました", err)
	}
	m.logger.Info("商品削除完了", zap.Int64("item_id", id))
	return nil
}

// GetCategories recomputes category summaries from the store
// カテゴリ集計を取得
func (m *Manager) GetCategories(ctx context.Context) ([]Category, error) {
	items, err := m.GetItems(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeCategories(items), nil
}

// GetLowStockItems returns low and out-of-stock items
// 低在庫商品を取得
func (m *Manager) GetLowStockItems(ctx context.Context) ([]Item, error) {
	items, err := m.GetItems(ctx)
	if err != nil {
		return nil, err
	}
	return LowStockItems(items), nil
}

// GetStats computes the dashboard figures with the configured pending inbound
// ダッシュボード集計を取得
func (m *Manager) GetStats(ctx context.Context) (StatsSummary, error) {
	items, err := m.GetItems(ctx)
	if err != nil {
		return StatsSummary{}, err
	}
	return m.stats(items), nil
}

// GetTrendData returns every trend sample
// 在庫推移を取得
func (m *Manager) GetTrendData(ctx context.Context) ([]TrendPoint, error) {
	points, err := m.storage.ListTrend(ctx)
	if err != nil {
		return nil, NewStorageError("list_trend", "在庫推移取得に失敗しました", err)
	}
	if points == nil {
		points = []TrendPoint{}
	}
	return points, nil
}

// GetTrendWindow returns the samples of a chart range
func (m *Manager) GetTrendWindow(ctx context.Context, r TrendRange) ([]TrendPoint, error) {
	if _, err := r.Days(); err != nil {
		return nil, err
	}
	points, err := m.GetTrendData(ctx)
	if err != nil {
		return nil, err
	}
	return TrendWindow(points, r)
}

// SnapshotTrend records the current total quantity as the sample for date.
// An empty date means today.
// 現在の総在庫数を推移サンプルとして記録
func (m *Manager) SnapshotTrend(ctx context.Context, date string) (TrendPoint, error) {
	if date == "" {
		date = m.today()
	}
	if err := ValidateDate("date", date); err != nil {
		return TrendPoint{}, err
	}
	items, err := m.GetItems(ctx)
	if err != nil {
		return TrendPoint{}, err
	}

	point := TotalQuantityPoint(items, date)
	if err := m.storage.PutTrendPoint(ctx, point); err != nil {
		return TrendPoint{}, NewStorageError("put_trend", "在庫推移記録に失敗しました", err)
	}
	m.logger.Info("在庫推移記録完了", zap.String("date", date), zap.Int64("quantity", point.Quantity))
	return point, nil
}

// SearchItems filters the store with the criteria
// 条件で商品を絞り込み
func (m *Manager) SearchItems(ctx context.Context, criteria Criteria) ([]Item, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	items, err := m.GetItems(ctx)
	if err != nil {
		return nil, err
	}
	filtered, err := FilterItems(items, criteria)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("商品絞り込み完了",
		zap.String("search", criteria.SearchText),
		zap.Strings("categories", criteria.Categories),
		zap.String("status", string(criteria.Status)),
		zap.Int("count", len(filtered)),
	)
	return filtered, nil
}

// Table filters the store and renders the view's current page
// 絞り込み後にテーブルの現在ページを描画
func (m *Manager) Table(ctx context.Context, criteria Criteria, view *TableView) (TableResult, error) {
	filtered, err := m.SearchItems(ctx, criteria)
	if err != nil {
		return TableResult{}, err
	}
	return view.Render(filtered)
}

// Query renders a stateless table request
// テーブル要求を描画
func (m *Manager) Query(ctx context.Context, q TableQuery) (TableResult, error) {
	view, err := q.View(m.config.DefaultPageSize)
	if err != nil {
		return TableResult{}, err
	}
	return m.Table(ctx, q.Criteria, view)
}

// Dashboard returns the stats cards and the alert panel
// ダッシュボード内容を取得
func (m *Manager) Dashboard(ctx context.Context) (Dashboard, error) {
	items, err := m.GetItems(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Stats:  m.stats(items),
		Alerts: BuildAlertDigest(items, m.config.AlertPreviewLimit),
	}, nil
}

// ヘルパーメソッド

func (m *Manager) stats(items []Item) StatsSummary {
	stats := ComputeStats(items)
	stats.PendingInbound = m.config.PendingInbound
	if m.observer != nil {
		m.observer.ObserveStats(stats, CountByStatus(items))
	}
	return stats
}

func (m *Manager) today() string {
	return m.now().Format(DateLayout)
}
