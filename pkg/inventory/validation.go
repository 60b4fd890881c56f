package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the lastUpdated format (no timezone semantics)
const DateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct validates any tagged struct and converts the first failure
// into a ValidationError
// タグ付き構造体をバリデーション
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewValidationError(lowerFirst(fe.Field()), validationMessage(fe), fmt.Sprintf("%v", fe.Value()))
	}
	return NewValidationError("input", err.Error(), "")
}

// ValidateItem 商品全体をバリデーション
func ValidateItem(item *Item) error {
	if item == nil {
		return NewValidationError("item", "商品が指定されていません", "nil")
	}
	if item.ID <= 0 {
		return NewValidationError("id", "商品IDは1以上である必要があります", fmt.Sprintf("%d", item.ID))
	}
	if strings.TrimSpace(item.Name) == "" {
		return NewValidationError("name", "商品名が空です", item.Name)
	}
	return ValidateStruct(item)
}

// ValidateItemInput 新規商品入力をバリデーション
func ValidateItemInput(in *ItemInput) error {
	if in == nil {
		return NewValidationError("item", "商品が指定されていません", "nil")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "商品名が空です", in.Name)
	}
	return ValidateStruct(in)
}

// ValidateItemPatch 部分更新をバリデーション
func ValidateItemPatch(p *ItemPatch) error {
	if p == nil || p.IsEmpty() {
		return NewValidationError("patch", "更新内容がありません", "")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("name", "商品名が空です", *p.Name)
	}
	return ValidateStruct(p)
}

// ValidateDate checks a YYYY-MM-DD date string
func ValidateDate(field, value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return NewValidationError(field, "日付はYYYY-MM-DD形式である必要があります", value)
	}
	return nil
}

// ValidateTrendPoint 推移サンプルをバリデーション
func ValidateTrendPoint(p TrendPoint) error {
	if err := ValidateDate("date", p.Date); err != nil {
		return err
	}
	if p.Quantity < 0 {
		return NewValidationError("quantity", "数量は0以上である必要があります", fmt.Sprintf("%d", p.Quantity))
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須項目です"
	case "min":
		return fmt.Sprintf("%s以上である必要があります", fe.Param())
	case "max":
		return fmt.Sprintf("%s以下である必要があります", fe.Param())
	case "datetime":
		return "日付はYYYY-MM-DD形式である必要があります"
	}
	return fmt.Sprintf("%s 制約に違反しています", fe.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
