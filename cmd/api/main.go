package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nemonet1337/zaiStockView/internal/config"
	"github.com/nemonet1337/zaiStockView/internal/logging"
	"github.com/nemonet1337/zaiStockView/internal/metrics"
	"github.com/nemonet1337/zaiStockView/pkg/inventory"
	"github.com/nemonet1337/zaiStockView/pkg/inventory/storage"
)

func main() {
	// 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("設定読み込みに失敗しました:", err)
	}

	// ログ設定
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal("ログ初期化に失敗しました:", err)
	}
	defer logger.Sync()

	// ストレージ初期化
	store, closeStore, err := openStorage(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("ストレージ初期化に失敗しました", zap.Error(err))
	}
	defer closeStore()

	var m *metrics.Metrics
	var observer inventory.StatsObserver
	if cfg.API.EnableMetrics {
		m = metrics.New()
		observer = m
	}

	// 在庫マネージャー初期化
	manager := inventory.NewManager(store, observer, logger, &inventory.Config{
		PendingInbound:    cfg.Dashboard.PendingInbound,
		AlertPreviewLimit: cfg.Dashboard.AlertPreviewLimit,
		DefaultPageSize:   cfg.Dashboard.DefaultPageSize,
	})

	// HTTPハンドラー設定
	handlers := NewHandlers(manager, store, logger)
	router := setupRouter(handlers, m, cfg.API)

	// HTTPサーバー設定
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  cfg.API.IdleTimeout,
	}

	// グレースフルシャットダウン設定
	go func() {
		logger.Info("在庫ダッシュボードAPIサーバーを開始します",
			zap.Int("port", cfg.API.Port),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー開始に失敗しました", zap.Error(err))
		}
	}()

	// シャットダウンシグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	// グレースフルシャットダウン
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンに失敗しました", zap.Error(err))
	}

	logger.Info("サーバーが正常に停止しました")
}

// openStorage builds the configured store, applies the schema, seeds demo
// data and wraps it with the Redis cache when enabled
// 設定に応じてストレージを構築
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (inventory.Storage, func(), error) {
	var (
		base     inventory.Storage
		sqlStore *storage.SQLStorage
		err      error
	)

	switch cfg.Storage.Driver {
	case "memory":
		if cfg.Storage.Seed {
			base = storage.NewSeededMemoryStorage(logger)
		} else {
			base = storage.NewMemoryStorage(logger)
		}
	case "postgres":
		sqlStore, err = storage.OpenPostgres(cfg.DSN(), logger)
	case "sqlite":
		sqlStore, err = storage.OpenSQLite(cfg.Storage.SQLitePath, logger)
	default:
		return nil, nil, fmt.Errorf("未対応のストレージドライバーです: %s", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	if sqlStore != nil {
		if err := sqlStore.EnsureSchema(ctx); err != nil {
			sqlStore.Close()
			return nil, nil, err
		}
		if cfg.Storage.Seed {
			seeded, err := storage.SeedIfEmpty(ctx, sqlStore, inventory.SeedItems(), inventory.SeedTrend())
			if err != nil {
				sqlStore.Close()
				return nil, nil, err
			}
			if seeded {
				logger.Info("デモデータを投入しました")
			}
		}
		base = sqlStore
	}

	if !cfg.Redis.Enabled {
		return base, func() { base.Close() }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// キャッシュなしでも動作を継続
		logger.Warn("Redisに接続できません。キャッシュ読み込みは失敗時にストアへフォールバックします",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	cached := storage.NewCachedStorage(base, rdb, cfg.Redis.Prefix, cfg.Redis.TTL, logger)
	return cached, func() {
		cached.Close()
		rdb.Close()
	}, nil
}

// setupRouter sets up HTTP routes
// HTTPルートを設定
func setupRouter(handlers *Handlers, m *metrics.Metrics, cfg config.APIConfig) *mux.Router {
	router := mux.NewRouter()

	// ヘルスチェック
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	// API v1ルート
	api := router.PathPrefix("/api/v1").Subrouter()

	// 商品
	api.HandleFunc("/items", handlers.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items", handlers.CreateItem).Methods(http.MethodPost)
	api.HandleFunc("/items/all", handlers.SearchItems).Methods(http.MethodGet)
	api.HandleFunc("/items/alerts", handlers.GetLowStockItems).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", handlers.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", handlers.UpdateItem).Methods(http.MethodPut)
	api.HandleFunc("/items/{id:[0-9]+}", handlers.DeleteItem).Methods(http.MethodDelete)

	// 集計
	api.HandleFunc("/categories", handlers.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/stats", handlers.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/trend", handlers.GetTrend).Methods(http.MethodGet)
	api.HandleFunc("/trend/snapshot", handlers.SnapshotTrend).Methods(http.MethodPost)
	api.HandleFunc("/dashboard", handlers.GetDashboard).Methods(http.MethodGet)

	// ミドルウェア（登録順に実行）
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware(handlers.logger))
	if m != nil {
		router.Use(m.Middleware)
	}
	if cfg.RateLimit > 0 {
		router.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1)), handlers))
	}
	if cfg.EnableCORS {
		// プリフライトは全パスで受け付ける
		router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		router.Use(corsMiddleware)
	}

	return router
}
