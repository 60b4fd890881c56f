package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

// Handlers holds HTTP handlers for the inventory API
// 在庫API用のHTTPハンドラーを保持
type Handlers struct {
	manager *inventory.Manager
	storage inventory.Storage // ヘルスチェック用
	logger  *zap.Logger
}

// NewHandlers creates new HTTP handlers
// 新しいHTTPハンドラーを作成
func NewHandlers(manager *inventory.Manager, storage inventory.Storage, logger *zap.Logger) *Handlers {
	return &Handlers{
		manager: manager,
		storage: storage,
		logger:  logger,
	}
}

// APIResponse represents standard API response format
// 標準的なAPIレスポンス形式を表現
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SnapshotTrendRequest represents request to record a trend sample
// 在庫推移記録リクエストを表現
type SnapshotTrendRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"` // 空なら当日
}

// HealthCheck handles health check requests
// ヘルスチェックリクエストを処理
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("ストレージのヘルスチェックに失敗しました", zap.Error(err))
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	h.sendJSON(w, code, APIResponse{
		Success: code == http.StatusOK,
		Data: map[string]interface{}{
			"status":    status,
			"timestamp": time.Now(),
			"service":   "zaiStockView",
		},
	})
}

// ListItems renders one table page
// テーブルの1ページを返す
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	q, err := inventory.ParseTableQuery(r.URL.Query())
	if err != nil {
		h.handleError(w, err)
		return
	}

	result, err := h.manager.Query(r.Context(), q)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, result)
}

// SearchItems returns every item matching the filter parameters, unpaginated
// 条件に一致する全商品を返す
func (h *Handlers) SearchItems(w http.ResponseWriter, r *http.Request) {
	q, err := inventory.ParseTableQuery(r.URL.Query())
	if err != nil {
		h.handleError(w, err)
		return
	}

	items, err := h.manager.SearchItems(r.Context(), q.Criteria)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, items)
}

// GetLowStockItems handles low stock list requests
// 低在庫一覧リクエストを処理
func (h *Handlers) GetLowStockItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.manager.GetLowStockItems(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, items)
}

// GetItem handles get item requests
// 商品取得リクエストを処理
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, err := h.manager.GetItem(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, item)
}

// derivedFields are item fields that clients echo back but the server owns.
// They are accepted and dropped.
// サーバー側で決まる項目（受け取っても無視）
type derivedFields struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Status json.RawMessage `json:"status,omitempty"`
}

// CreateItemRequest is the body of POST /items
type CreateItemRequest struct {
	inventory.ItemInput
	derivedFields
}

// UpdateItemRequest is the body of PUT /items/{id}
type UpdateItemRequest struct {
	inventory.ItemPatch
	derivedFields
}

// CreateItem handles create item requests
// 商品作成リクエストを処理
func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.manager.AddItem(r.Context(), req.ItemInput)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, APIResponse{Success: true, Data: item})
}

// UpdateItem handles partial update requests
// 商品更新リクエストを処理
func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.manager.UpdateItem(r.Context(), id, req.ItemPatch)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, item)
}

// DeleteItem handles delete item requests
// 商品削除リクエストを処理
func (h *Handlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	if err := h.manager.DeleteItem(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, map[string]string{
		"message": "商品削除が完了しました",
	})
}

// GetCategories handles category summary requests
// カテゴリ集計リクエストを処理
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.manager.GetCategories(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, categories)
}

// GetStats handles stats card requests
// 統計リクエストを処理
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.GetStats(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, stats)
}

// GetTrend returns the trend samples; ?range= limits them to a chart window
// 在庫推移リクエストを処理
func (h *Handlers) GetTrend(w http.ResponseWriter, r *http.Request) {
	var (
		points []inventory.TrendPoint
		err    error
	)
	if rng := r.URL.Query().Get("range"); rng != "" {
		points, err = h.manager.GetTrendWindow(r.Context(), inventory.TrendRange(rng))
	} else {
		points, err = h.manager.GetTrendData(r.Context())
	}
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, points)
}

// SnapshotTrend records the current total quantity as a trend sample
// 現在の総在庫数を推移として記録
func (h *Handlers) SnapshotTrend(w http.ResponseWriter, r *http.Request) {
	var req SnapshotTrendRequest
	// 本文なし（チャンク転送の空本文を含む）は当日分として扱う
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}
	if err := inventory.ValidateStruct(&req); err != nil {
		h.handleError(w, err)
		return
	}

	point, err := h.manager.SnapshotTrend(r.Context(), req.Date)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, APIResponse{Success: true, Data: point})
}

// GetDashboard handles dashboard requests
// ダッシュボードリクエストを処理
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.manager.Dashboard(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, d)
}

// ヘルパーメソッド

func (h *Handlers) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.sendError(w, http.StatusBadRequest, "無効な商品IDです: "+raw)
		return 0, false
	}
	return id, true
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := decodeBody(r, dest); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return false
	}
	return true
}

func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

// handleError maps domain errors to HTTP status codes
// ドメインエラーをHTTPステータスに変換
func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrItemNotFound):
		h.sendError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrInvalidCriteria):
		h.sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		// クライアント切断のため応答不要
		h.logger.Debug("リクエストがキャンセルされました", zap.Error(err))
	default:
		h.logger.Error("リクエスト処理に失敗しました", zap.Error(err))
		h.sendError(w, http.StatusInternalServerError, "内部エラーが発生しました")
	}
}

// sendSuccess sends a successful API response
// 成功APIレスポンスを送信
func (h *Handlers) sendSuccess(w http.ResponseWriter, data interface{}) {
	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error API response
// エラーAPIレスポンスを送信
func (h *Handlers) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *Handlers) sendJSON(w http.ResponseWriter, statusCode int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("レスポンス送信に失敗しました", zap.Error(err))
	}
}
