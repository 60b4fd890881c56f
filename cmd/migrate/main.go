package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/nemonet1337/zaiStockView/internal/config"
	"github.com/nemonet1337/zaiStockView/internal/logging"
	"github.com/nemonet1337/zaiStockView/pkg/inventory"
	"github.com/nemonet1337/zaiStockView/pkg/inventory/storage"
)

func main() {
	dir := flag.String("dir", "", "マイグレーションディレクトリ（migrations/*.sql を含む）。空なら組み込みのスキーマを使用")
	seed := flag.Bool("seed", false, "空のストアにデモデータを投入する")
	flag.Parse()

	// 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("設定読み込みに失敗しました:", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal("ログ初期化に失敗しました:", err)
	}
	defer logger.Sync()

	logger.Info("zaiStockView マイグレーション実行ツール", zap.String("driver", cfg.Storage.Driver))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, *dir, *seed, logger); err != nil {
		logger.Fatal("マイグレーション実行に失敗しました", zap.Error(err))
	}

	logger.Info("すべてのマイグレーションが完了しました")
}

func run(ctx context.Context, cfg *config.Config, dir string, seed bool, logger *zap.Logger) error {
	st, err := open(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	// マイグレーションファイルの取得元
	var fsys fs.FS = storage.Migrations
	if dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("マイグレーションディレクトリが見つかりません: %s", dir)
		}
		fsys = os.DirFS(dir)
	}

	applied, err := storage.Migrate(ctx, st.DB(), st.Dialect(), fsys, logger)
	if err != nil {
		return err
	}
	logger.Info("マイグレーション結果", zap.Int("applied", len(applied)), zap.Strings("files", applied))

	if !seed {
		return nil
	}
	seeded, err := storage.SeedIfEmpty(ctx, st, inventory.SeedItems(), inventory.SeedTrend())
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("デモデータを投入しました", zap.Int("items", len(inventory.SeedItems())))
	} else {
		logger.Info("既存データがあるためデモデータ投入をスキップしました")
	}
	return nil
}

func open(cfg *config.Config, logger *zap.Logger) (*storage.SQLStorage, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		logger.Info("データベースに接続中",
			zap.String("host", cfg.Storage.Host),
			zap.Int("port", cfg.Storage.Port),
			zap.String("dbname", cfg.Storage.DBName),
		)
		return storage.OpenPostgres(cfg.DSN(), logger)
	case "sqlite":
		logger.Info("データベースに接続中", zap.String("path", cfg.Storage.SQLitePath))
		return storage.OpenSQLite(cfg.Storage.SQLitePath, logger)
	}
	return nil, fmt.Errorf("マイグレーション対象外のストレージドライバーです: %s", cfg.Storage.Driver)
}
