package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Migrations holds the schema files applied by Migrate, in filename order
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Migrate applies every migration in fsys that has not been recorded in
// schema_migrations yet. Each file runs in its own transaction.
// It returns the filenames applied by this call.
// 未実行のマイグレーションを実行
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, fsys fs.FS, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := createMigrationTable(ctx, db); err != nil {
		return nil, err
	}

	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("マイグレーションファイル検索エラー: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("マイグレーションファイルが見つかりません")
		return nil, nil
	}
	slices.Sort(files)

	executed, err := executedMigrations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("実行済みマイグレーション取得エラー: %w", err)
	}

	applied := make([]string, 0, len(files))
	for _, file := range files {
		name := file[len("migrations/"):]

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return applied, fmt.Errorf("ファイル読み込みエラー %s: %w", name, err)
		}
		checksum := Checksum(content)

		if prev, ok := executed[name]; ok {
			if prev != checksum {
				logger.Warn("実行済みマイグレーションの内容が変更されています",
					zap.String("filename", name),
					zap.String("recorded", prev),
					zap.String("current", checksum),
				)
			}
			logger.Debug("スキップ (実行済み)", zap.String("filename", name))
			continue
		}

		if err := applyMigration(ctx, db, dialect, name, string(content), checksum); err != nil {
			return applied, err
		}
		logger.Info("マイグレーション完了", zap.String("filename", name))
		applied = append(applied, name)
	}
	return applied, nil
}

// Checksum returns the hex sha256 of a migration file
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func createMigrationTable(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename    VARCHAR(255) PRIMARY KEY,
			checksum    VARCHAR(64) NOT NULL,
			executed_at TEXT NOT NULL
		)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("マイグレーション履歴テーブル作成エラー: %w", err)
	}
	return nil
}

func executedMigrations(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT filename, checksum FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	executed := make(map[string]string)
	for rows.Next() {
		var name, checksum string
		if err := rows.Scan(&name, &checksum); err != nil {
			return nil, err
		}
		executed[name] = checksum
	}
	return executed, rows.Err()
}

func applyMigration(ctx context.Context, db *sql.DB, dialect Dialect, name, content, checksum string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始エラー %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, content); err != nil {
		return fmt.Errorf("マイグレーション実行エラー %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		dialect.rebind("INSERT INTO schema_migrations (filename, checksum, executed_at) VALUES (?, ?, ?)"),
		name, checksum, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("マイグレーション履歴記録エラー %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションコミットエラー %s: %w", name, err)
	}
	return nil
}
