package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

// Dialect selects the SQL flavour of a database connection
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// rebind converts ? placeholders into $n for PostgreSQL
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStorage implements the Storage interface on PostgreSQL or SQLite
// PostgreSQLまたはSQLiteを使用したStorageインターフェースの実装
type SQLStorage struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

var _ inventory.Storage = (*SQLStorage)(nil)

// NewSQLStorage wraps an open database. The schema must already exist;
// see EnsureSchema.
func NewSQLStorage(db *sql.DB, dialect Dialect, logger *zap.Logger) *SQLStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStorage{db: db, dialect: dialect, logger: logger}
}

// OpenPostgres connects to PostgreSQL
// PostgreSQLに接続
func OpenPostgres(dsn string, logger *zap.Logger) (*SQLStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
	}

	// 接続テスト
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("データベースpingに失敗しました: %w", err)
	}

	// 接続プール設定
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return NewSQLStorage(db, DialectPostgres, logger), nil
}

// OpenSQLite opens a SQLite database file (":memory:" for a private in-memory db)
// SQLiteデータベースを開く
func OpenSQLite(path string, logger *zap.Logger) (*SQLStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
	}
	// 単一接続（:memory: は接続ごとに別DBになるため）
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("PRAGMA設定に失敗しました %q: %w", p, err)
		}
	}

	return NewSQLStorage(db, DialectSQLite, logger), nil
}

// DB returns the underlying connection pool
func (s *SQLStorage) DB() *sql.DB { return s.db }

// Dialect returns the SQL flavour of the connection
func (s *SQLStorage) Dialect() Dialect { return s.dialect }

// EnsureSchema applies the embedded migrations
// スキーマを作成（マイグレーション実行）
func (s *SQLStorage) EnsureSchema(ctx context.Context) error {
	applied, err := Migrate(ctx, s.db, s.dialect, Migrations, s.logger)
	if err != nil {
		return fmt.Errorf("スキーマ作成に失敗しました: %w", err)
	}
	if len(applied) > 0 {
		s.logger.Info("スキーマを作成しました", zap.Strings("migrations", applied))
	}
	return nil
}

const itemColumns = "id, name, category, quantity, threshold, unit, location, last_updated"

// List returns every item in insertion order
// 全商品を登録順で取得
func (s *SQLStorage) List(ctx context.Context) ([]inventory.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("商品一覧取得に失敗しました: %w", err)
	}
	defer rows.Close()

	items := make([]inventory.Item, 0)
	for rows.Next() {
		var item inventory.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("商品データ読み込みに失敗しました: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get retrieves one item
// 商品を取得
func (s *SQLStorage) Get(ctx context.Context, id int64) (*inventory.Item, error) {
	query := s.dialect.rebind(`SELECT ` + itemColumns + ` FROM items WHERE id = ?`)

	item := &inventory.Item{}
	if err := scanItem(s.db.QueryRowContext(ctx, query, id), item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, fmt.Errorf("商品取得に失敗しました: %w", err)
	}
	return item, nil
}

// Upsert inserts a new item at the end of the list or replaces an existing
// one in place, and raises the id counter past the item's id. The counter row
// lock is taken first so concurrent inserts get distinct positions.
// 商品を登録または置換
func (s *SQLStorage) Upsert(ctx context.Context, item *inventory.Item) error {
	if item == nil || item.ID <= 0 {
		return inventory.NewValidationError("id", "商品IDは1以上である必要があります", fmt.Sprintf("%v", item))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	// 採番行のロックで同時登録を直列化する
	if _, err := tx.ExecContext(ctx,
		s.dialect.rebind(`UPDATE item_id_counter SET value = CASE WHEN value < ? THEN ? ELSE value END WHERE id = 1`),
		item.ID, item.ID,
	); err != nil {
		return fmt.Errorf("商品ID採番の更新に失敗しました: %w", err)
	}

	query := s.dialect.rebind(`
		INSERT INTO items (id, name, category, quantity, threshold, unit, location, last_updated, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM items))
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			quantity = excluded.quantity,
			threshold = excluded.threshold,
			unit = excluded.unit,
			location = excluded.location,
			last_updated = excluded.last_updated`)

	if _, err := tx.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Category,
		item.Quantity,
		item.Threshold,
		item.Unit,
		item.Location,
		item.LastUpdated,
	); err != nil {
		return s.mapWriteError("商品保存に失敗しました", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションコミットに失敗しました: %w", err)
	}
	return nil
}

// Delete removes an item
// 商品を削除
func (s *SQLStorage) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("商品削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除行数の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}

// NextID allocates a never-used id from the counter table
// 未使用の商品IDを採番
func (s *SQLStorage) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE item_id_counter SET value = value + 1 WHERE id = 1 RETURNING value`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("商品ID採番に失敗しました: %w", err)
	}
	return id, nil
}

// ListTrend returns the samples ascending by date
// 在庫推移を日付順で取得
func (s *SQLStorage) ListTrend(ctx context.Context) ([]inventory.TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sample_date, quantity FROM trend_points ORDER BY sample_date`)
	if err != nil {
		return nil, fmt.Errorf("在庫推移取得に失敗しました: %w", err)
	}
	defer rows.Close()

	points := make([]inventory.TrendPoint, 0)
	for rows.Next() {
		var p inventory.TrendPoint
		if err := rows.Scan(&p.Date, &p.Quantity); err != nil {
			return nil, fmt.Errorf("在庫推移データ読み込みに失敗しました: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// PutTrendPoint stores a sample, replacing one with the same date
// 在庫推移サンプルを保存
func (s *SQLStorage) PutTrendPoint(ctx context.Context, point inventory.TrendPoint) error {
	if err := inventory.ValidateTrendPoint(point); err != nil {
		return err
	}
	query := s.dialect.rebind(`
		INSERT INTO trend_points (sample_date, quantity) VALUES (?, ?)
		ON CONFLICT (sample_date) DO UPDATE SET quantity = excluded.quantity`)

	if _, err := s.db.ExecContext(ctx, query, point.Date, point.Quantity); err != nil {
		return s.mapWriteError("在庫推移保存に失敗しました", err)
	}
	return nil
}

// Ping checks the connection
func (s *SQLStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// ヘルパーメソッド

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, item *inventory.Item) error {
	return row.Scan(
		&item.ID,
		&item.Name,
		&item.Category,
		&item.Quantity,
		&item.Threshold,
		&item.Unit,
		&item.Location,
		&item.LastUpdated,
	)
}

// mapWriteError turns a PostgreSQL check violation into a ValidationError
func (s *SQLStorage) mapWriteError(message string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23514" {
		return inventory.NewValidationError(pqErr.Constraint, "データ制約に違反しています", pqErr.Message)
	}
	return fmt.Errorf("%s: %w", message, err)
}
