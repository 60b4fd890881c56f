package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

const testTTL = time.Minute

func TestCachedStorage_ListMissThenStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewCachedStorage(NewSeededMemoryStorage(nil), rdb, "test", testTTL, nil)

	data, err := json.Marshal(inventory.SeedItems())
	require.NoError(t, err)
	mock.ExpectGet("test:items").RedisNil()
	mock.ExpectSet("test:items", data, testTTL).SetVal("OK")

	items, err := c.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, inventory.SeedItems(), items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStorage_ListHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	// 内部ストアは空なのでキャッシュからのみ取得できる
	c := NewCachedStorage(NewMemoryStorage(nil), rdb, "test", testTTL, nil)

	data, err := json.Marshal(inventory.SeedItems()[:2])
	require.NoError(t, err)
	mock.ExpectGet("test:items").SetVal(string(data))

	items, err := c.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, inventory.SeedItems()[:2], items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStorage_RedisErrorFallsBack(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewCachedStorage(NewSeededMemoryStorage(nil), rdb, "test", testTTL, nil)

	data, err := json.Marshal(inventory.SeedTrend())
	require.NoError(t, err)
	mock.ExpectGet("test:trend").SetErr(errors.New("connection refused"))
	mock.ExpectSet("test:trend", data, testTTL).SetErr(errors.New("connection refused"))

	trend, err := c.ListTrend(context.Background())

	require.NoError(t, err)
	assert.Equal(t, inventory.SeedTrend(), trend)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStorage_CorruptEntryFallsBack(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewCachedStorage(NewSeededMemoryStorage(nil), rdb, "test", testTTL, nil)

	data, err := json.Marshal(inventory.SeedItems())
	require.NoError(t, err)
	mock.ExpectGet("test:items").SetVal("{not json")
	mock.ExpectSet("test:items", data, testTTL).SetVal("OK")

	items, err := c.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 15)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStorage_WritesInvalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := NewSeededMemoryStorage(nil)
	c := NewCachedStorage(inner, rdb, "test", testTTL, nil)
	ctx := context.Background()

	mock.ExpectDel("test:items").SetVal(1)
	mock.ExpectDel("test:items").SetVal(0)
	mock.ExpectDel("test:trend").SetVal(1)

	item := inventory.SeedItems()[0]
	item.Quantity = 1
	require.NoError(t, c.Upsert(ctx, &item))
	require.NoError(t, c.Delete(ctx, 2))
	require.NoError(t, c.PutTrendPoint(ctx, inventory.TrendPoint{Date: "2024-01-16", Quantity: 1}))

	got, err := inner.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStorage_FailedWriteKeepsCache(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewCachedStorage(NewSeededMemoryStorage(nil), rdb, "test", testTTL, nil)

	err := c.Delete(context.Background(), 99)

	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStorage_Ping(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewCachedStorage(NewMemoryStorage(nil), rdb, "", 0, nil)

	mock.ExpectPing().SetVal("PONG")
	mock.ExpectPing().SetErr(errors.New("down"))

	assert.NoError(t, c.Ping(context.Background()))
	assert.Error(t, c.Ping(context.Background()))
	assert.Equal(t, "zaistockview:items", c.ItemsKey())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStorage_WithManager(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewCachedStorage(NewSeededMemoryStorage(nil), rdb, "test", testTTL, nil)
	manager := inventory.NewManager(c, nil, nil, nil)

	data, err := json.Marshal(inventory.SeedItems())
	require.NoError(t, err)
	mock.ExpectGet("test:items").SetVal(string(data))

	stats, err := manager.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 15, stats.TotalSKU)
	assert.Equal(t, int64(10815), stats.TotalQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// pausingStorage blocks its first List after reading until release is closed
type pausingStorage struct {
	*MemoryStorage
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *pausingStorage) List(ctx context.Context) ([]inventory.Item, error) {
	items, err := s.MemoryStorage.List(ctx)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return items, err
}

func TestCachedStorage_WriteDuringFillIsNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &pausingStorage{
		MemoryStorage: NewSeededMemoryStorage(nil),
		read:          make(chan struct{}),
		release:       make(chan struct{}),
	}
	core, logs := observer.New(zap.DebugLevel)
	c := NewCachedStorage(inner, rdb, "test", testTTL, zap.New(core))
	ctx := context.Background()

	mock.ExpectGet("test:items").RedisNil()
	mock.ExpectDel("test:items").SetVal(0)

	done := make(chan []inventory.Item, 1)
	go func() {
		items, err := c.List(ctx)
		assert.NoError(t, err)
		done <- items
	}()

	<-inner.read
	item := inventory.SeedItems()[0]
	item.Quantity = 0
	require.NoError(t, c.Upsert(ctx, &item))
	close(inner.release)

	old := <-done
	assert.Equal(t, int64(1500), old[0].Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, logs.FilterMessage("書き込みと競合したためキャッシュ保存をスキップしました").Len())
	assert.Zero(t, logs.FilterMessage("キャッシュ保存に失敗しました").Len())

	// 次の読み取りで更新後の一覧が保存される
	current, err := inner.MemoryStorage.List(ctx)
	require.NoError(t, err)
	data, err := json.Marshal(current)
	require.NoError(t, err)
	mock.ExpectGet("test:items").RedisNil()
	mock.ExpectSet("test:items", data, testTTL).SetVal("OK")

	items, err := c.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(0), items[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
