// Package client implements inventory.Backend over the zaiStockView HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

// Config holds client settings
// クライアント設定
type Config struct {
	BaseURL      string        // 例: http://localhost:8080
	Timeout      time.Duration // リクエストごとのタイムアウト
	RetryCount   int           // 5xx・通信エラー時の再試行回数
	RetryWait    time.Duration
	BreakerName  string
	MaxFailures  uint32        // 連続失敗でブレーカーを開く回数
	OpenInterval time.Duration // 半開状態に移るまでの待ち時間
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RetryWait <= 0 {
		c.RetryWait = 200 * time.Millisecond
	}
	if c.BreakerName == "" {
		c.BreakerName = "zaistockview-api"
	}
	if c.MaxFailures == 0 {
		c.MaxFailures = 5
	}
	if c.OpenInterval <= 0 {
		c.OpenInterval = 30 * time.Second
	}
	return c
}

// Client talks to the HTTP API through a circuit breaker. SearchItems runs
// through a RequestGate so that a superseded search never overwrites a newer one.
// HTTP API用クライアント（サーキットブレーカー付き）
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	gate    *inventory.RequestGate
	logger  *zap.Logger
}

var _ inventory.Backend = (*Client)(nil)

// envelope is the {success,data,error} response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// New creates a client
// 新しいクライアントを作成
func New(cfg Config, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return r.StatusCode() >= http.StatusInternalServerError
		})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.OpenInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// 4xx とキャンセルはバックエンド障害として数えない
			return err == nil ||
				errors.Is(err, inventory.ErrItemNotFound) ||
				errors.Is(err, inventory.ErrInvalidCriteria) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("サーキットブレーカーの状態が変化しました",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		gate:    inventory.NewRequestGate(),
		logger:  logger,
	}
}

// BreakerState returns the circuit breaker state (closed, half-open, open)
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// GetItems returns every item in store order
func (c *Client) GetItems(ctx context.Context) ([]inventory.Item, error) {
	items := make([]inventory.Item, 0)
	if err := c.do(ctx, http.MethodGet, "/api/v1/items/all", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchItems returns the items matching the criteria. A call overtaken by a
// call with different criteria returns ErrStaleResponse.
// 条件検索（後発リクエスト優先）
func (c *Client) SearchItems(ctx context.Context, criteria inventory.Criteria) ([]inventory.Item, error) {
	query := inventory.TableQuery{Criteria: criteria}.Values()
	return c.gate.Do(ctx, criteria, func(reqCtx context.Context) ([]inventory.Item, error) {
		items := make([]inventory.Item, 0)
		if err := c.do(reqCtx, http.MethodGet, "/api/v1/items/all", query, nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
}

// Query renders one table page on the server
func (c *Client) Query(ctx context.Context, q inventory.TableQuery) (inventory.TableResult, error) {
	var result inventory.TableResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/items", q.Values(), nil, &result); err != nil {
		return inventory.TableResult{}, err
	}
	if result.Items == nil {
		result.Items = []inventory.Item{}
	}
	return result, nil
}

// GetItem returns one item
func (c *Client) GetItem(ctx context.Context, id int64) (*inventory.Item, error) {
	var item inventory.Item
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCategories returns the category summaries
func (c *Client) GetCategories(ctx context.Context) ([]inventory.Category, error) {
	categories := make([]inventory.Category, 0)
	if err := c.do(ctx, http.MethodGet, "/api/v1/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetLowStockItems returns low and out-of-stock items
func (c *Client) GetLowStockItems(ctx context.Context) ([]inventory.Item, error) {
	items := make([]inventory.Item, 0)
	if err := c.do(ctx, http.MethodGet, "/api/v1/items/alerts", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem applies a partial update
func (c *Client) UpdateItem(ctx context.Context, id int64, patch inventory.ItemPatch) (*inventory.Item, error) {
	var item inventory.Item
	if err := c.do(ctx, http.MethodPut, itemPath(id), nil, patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AddItem creates an item
func (c *Client) AddItem(ctx context.Context, in inventory.ItemInput) (*inventory.Item, error) {
	var item inventory.Item
	if err := c.do(ctx, http.MethodPost, "/api/v1/items", nil, in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an item
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil, nil)
}

// GetStats returns the dashboard figures
func (c *Client) GetStats(ctx context.Context) (inventory.StatsSummary, error) {
	var stats inventory.StatsSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, nil, &stats); err != nil {
		return inventory.StatsSummary{}, err
	}
	return stats, nil
}

// GetTrendData returns every trend sample
func (c *Client) GetTrendData(ctx context.Context) ([]inventory.TrendPoint, error) {
	points := make([]inventory.TrendPoint, 0)
	if err := c.do(ctx, http.MethodGet, "/api/v1/trend", nil, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// GetTrendWindow returns the samples of a chart range
func (c *Client) GetTrendWindow(ctx context.Context, r inventory.TrendRange) ([]inventory.TrendPoint, error) {
	points := make([]inventory.TrendPoint, 0)
	if err := c.do(ctx, http.MethodGet, "/api/v1/trend", url.Values{"range": {string(r)}}, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Dashboard returns the stats cards and the alert panel
func (c *Client) Dashboard(ctx context.Context) (inventory.Dashboard, error) {
	var d inventory.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/v1/dashboard", nil, nil, &d); err != nil {
		return inventory.Dashboard{}, err
	}
	return d, nil
}

// ヘルパーメソッド

func itemPath(id int64) string {
	return "/api/v1/items/" + strconv.FormatInt(id, 10)
}

// do sends one request through the breaker and decodes the envelope into out.
// Empty or null data leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req := c.http.R().SetContext(ctx)
		if query != nil {
			req.SetQueryParamsFromValues(query)
		}
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %v", inventory.ErrBackendUnavailable, err)
		}
		return nil, decode(resp, out)
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.logger.Warn("サーキットブレーカーによりリクエストを遮断しました", zap.String("path", path))
		return fmt.Errorf("%w: %v", inventory.ErrBackendUnavailable, err)
	}
	return err
}

func decode(resp *resty.Response, out any) error {
	var env envelope
	if raw := resp.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode() >= http.StatusInternalServerError {
				return fmt.Errorf("%w: status %d", inventory.ErrBackendUnavailable, resp.StatusCode())
			}
			return fmt.Errorf("レスポンス解析に失敗しました (status %d): %w", resp.StatusCode(), err)
		}
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusNotFound:
		return inventory.ErrItemNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", inventory.ErrInvalidCriteria, env.Error)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %s", inventory.ErrBackendUnavailable, status, env.Error)
	case status >= http.StatusMultipleChoices:
		return fmt.Errorf("予期しないステータス %d: %s", status, env.Error)
	}

	if !env.Success && env.Error != "" {
		return errors.New(env.Error)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("レスポンスデータ解析に失敗しました: %w", err)
	}
	return nil
}
