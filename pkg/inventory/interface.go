package inventory

import (
	"context"
)

// Repository is the item store contract
// 商品ストアのインターフェースを定義
type Repository interface {
	// List returns a snapshot of every item in insertion order
	List(ctx context.Context) ([]Item, error)
	// Get returns ErrItemNotFound when no item has the id
	Get(ctx context.Context, id int64) (*Item, error)
	// Upsert inserts the item if its id is absent, else replaces it in place
	Upsert(ctx context.Context, item *Item) error
	// Delete returns ErrItemNotFound when no item has the id
	Delete(ctx context.Context, id int64) error
	// NextID allocates an id that has never been used
	NextID(ctx context.Context) (int64, error)
}

// TrendStore keeps the daily aggregate-quantity samples
// 日次在庫推移の保存先
type TrendStore interface {
	// ListTrend returns samples ascending by date
	ListTrend(ctx context.Context) ([]TrendPoint, error)
	// PutTrendPoint stores a sample, replacing any sample with the same date
	PutTrendPoint(ctx context.Context, point TrendPoint) error
}

// Storage defines the interface for data persistence layer
// データ永続化層のインターフェースを定義
type Storage interface {
	Repository
	TrendStore

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// Backend is the data contract consumed by dashboards. The Manager serves it
// locally; client.Client serves it over HTTP. Implementations may return
// empty sequences or zero-value placeholders.
// ダッシュボードが利用するバックエンド契約
type Backend interface {
	GetItems(ctx context.Context) ([]Item, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetLowStockItems(ctx context.Context) ([]Item, error)
	UpdateItem(ctx context.Context, id int64, patch ItemPatch) (*Item, error)
	AddItem(ctx context.Context, in ItemInput) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (StatsSummary, error)
	GetTrendData(ctx context.Context) ([]TrendPoint, error)
}

// StatsObserver receives every computed summary (e.g. to export gauges)
// 集計結果の通知先（メトリクスなど）
type StatsObserver interface {
	ObserveStats(stats StatsSummary, counts StatusCounts)
}
