package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

// MemoryStorage implements the Storage interface in process memory.
// Items keep their insertion order; an upsert of an existing id replaces the
// item in place.
// メモリ上でStorageインターフェースを実装
type MemoryStorage struct {
	mu     sync.RWMutex
	items  []inventory.Item
	index  map[int64]int
	lastID int64
	trend  []inventory.TrendPoint
	logger *zap.Logger
}

var _ inventory.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty memory storage
// 空のメモリストレージを作成
func NewMemoryStorage(logger *zap.Logger) *MemoryStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStorage{
		index:  make(map[int64]int),
		trend:  make([]inventory.TrendPoint, 0),
		logger: logger,
	}
}

// NewSeededMemoryStorage creates a memory storage holding the demo data
// デモデータ入りのメモリストレージを作成
func NewSeededMemoryStorage(logger *zap.Logger) *MemoryStorage {
	s := NewMemoryStorage(logger)
	for _, item := range inventory.SeedItems() {
		s.put(item)
	}
	for _, p := range inventory.SeedTrend() {
		s.putTrend(p)
	}
	s.logger.Debug("デモデータを読み込みました", zap.Int("items", len(s.items)), zap.Int("trend", len(s.trend)))
	return s
}

// List returns a copy of every item in insertion order
func (s *MemoryStorage) List(ctx context.Context) ([]inventory.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]inventory.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Get retrieves one item
func (s *MemoryStorage) Get(ctx context.Context, id int64) (*inventory.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, inventory.ErrItemNotFound
	}
	item := s.items[i]
	return &item, nil
}

// Upsert inserts or replaces an item
func (s *MemoryStorage) Upsert(ctx context.Context, item *inventory.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item == nil || item.ID <= 0 {
		return inventory.NewValidationError("id", "商品IDは1以上である必要があります", fmt.Sprintf("%v", item))
	}
	if item.Quantity < 0 || item.Threshold < 0 {
		return inventory.NewValidationError("quantity", "数量と閾値は0以上である必要があります",
			fmt.Sprintf("%d/%d", item.Quantity, item.Threshold))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(*item)
	return nil
}

// Delete removes an item. Its id stays consumed.
func (s *MemoryStorage) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return inventory.ErrItemNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return nil
}

// NextID allocates a never-used id
func (s *MemoryStorage) NextID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID, nil
}

// ListTrend returns the samples ascending by date
func (s *MemoryStorage) ListTrend(ctx context.Context) ([]inventory.TrendPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]inventory.TrendPoint, len(s.trend))
	copy(out, s.trend)
	return out, nil
}

// PutTrendPoint stores a sample, replacing one with the same date
func (s *MemoryStorage) PutTrendPoint(ctx context.Context, point inventory.TrendPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := inventory.ValidateTrendPoint(point); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putTrend(point)
	return nil
}

// Ping always succeeds
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (s *MemoryStorage) Close() error {
	return nil
}

// put must be called with the write lock held
func (s *MemoryStorage) put(item inventory.Item) {
	if i, ok := s.index[item.ID]; ok {
		s.items[i] = item
	} else {
		s.index[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	s.lastID = max(s.lastID, item.ID)
}

func (s *MemoryStorage) putTrend(point inventory.TrendPoint) {
	i, found := slices.BinarySearchFunc(s.trend, point.Date, func(p inventory.TrendPoint, date string) int {
		return strings.Compare(p.Date, date)
	})
	if found {
		s.trend[i] = point
		return
	}
	s.trend = slices.Insert(s.trend, i, point)
}
