package inventory

import (
	"errors"
	"fmt"
)

// Common inventory errors
// 共通の在庫エラー定義

var (
	// ErrItemNotFound is returned when no item has the requested id
	// 商品が存在しない場合のエラー
	ErrItemNotFound = errors.New("商品が見つかりません")

	// ErrInvalidCriteria is returned for malformed filter, sort or pagination parameters
	// 不正な絞り込み・並び替え・ページング条件のエラー
	ErrInvalidCriteria = errors.New("無効な検索条件です")

	// ErrStaleResponse is returned when a newer request superseded this one
	// より新しいリクエストに置き換えられた場合のエラー
	ErrStaleResponse = errors.New("古いレスポンスのため破棄されました")

	// ErrBackendUnavailable is returned when the remote backend can't be reached
	// リモートバックエンドに接続できない場合のエラー
	ErrBackendUnavailable = errors.New("バックエンドに接続できません")
)

// ValidationError represents a validation error with details.
// It matches ErrInvalidCriteria under errors.Is.
// 詳細付きバリデーションエラーを表現
type ValidationError struct {
	Field   string `json:"field"`   // エラーフィールド
	Message string `json:"message"` // エラーメッセージ
	Value   string `json:"value"`   // 無効な値
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("バリデーションエラー [%s]: %s (値: %s)", e.Field, e.Message, e.Value)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidCriteria
}

// StorageError represents a storage layer error
// ストレージ層のエラーを表現
type StorageError struct {
	Operation string `json:"operation"` // 操作名
	Message   string `json:"message"`   // エラーメッセージ
	Cause     error  `json:"cause"`     // 原因エラー
}

func (e StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ストレージエラー [%s]: %s (原因: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("ストレージエラー [%s]: %s", e.Operation, e.Message)
}

func (e StorageError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
// 新しいバリデーションエラーを作成
func NewValidationError(field, message, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewStorageError creates a new storage error
// 新しいストレージエラーを作成
func NewStorageError(operation, message string, cause error) *StorageError {
	return &StorageError{
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}
