package inventory

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// StatusBucket selects items by status in the filter bar
// 絞り込みバーのステータス区分
type StatusBucket string

const (
	BucketAll    StatusBucket = "all"
	BucketNormal StatusBucket = "normal"
	BucketLow    StatusBucket = "low"
	BucketOut    StatusBucket = "out"
)

// ParseStatusBucket parses a bucket name. Unknown names fail instead of
// falling back to "all".
func ParseStatusBucket(s string) (StatusBucket, error) {
	b := StatusBucket(s)
	if !b.Valid() {
		return "", NewValidationError("status", "無効な在庫ステータス区分です", s)
	}
	return b, nil
}

// Valid reports whether b is a known bucket
func (b StatusBucket) Valid() bool {
	switch b {
	case BucketAll, BucketNormal, BucketLow, BucketOut:
		return true
	}
	return false
}

// Matches reports whether an item with status s falls in the bucket
func (b StatusBucket) Matches(s Status) bool {
	if b == BucketAll {
		return true
	}
	return Status(b) == s
}

// Criteria is the tuple of active filter parameters. The zero value selects
// every item: an empty Status means BucketAll.
// 有効な絞り込み条件の組
type Criteria struct {
	SearchText string       `json:"searchText"` // 商品名の部分一致（大文字小文字無視）
	Categories []string     `json:"categories"` // 空なら制限なし
	Status     StatusBucket `json:"status"`     // all/normal/low/out
}

// bucket returns the status bucket with the empty value read as BucketAll
func (c Criteria) bucket() StatusBucket {
	if c.Status == "" {
		return BucketAll
	}
	return c.Status
}

// Validate checks the criteria. Unknown buckets are rejected.
func (c Criteria) Validate() error {
	if !c.bucket().Valid() {
		return NewValidationError("status", "無効な在庫ステータス区分です", string(c.Status))
	}
	return nil
}

// IsActive reports whether any restriction is in effect. Selecting every
// known category is the same as selecting none.
// 絞り込みが有効かどうか
func (c Criteria) IsActive(allCategories []string) bool {
	if c.SearchText != "" || c.bucket() != BucketAll {
		return true
	}
	return len(c.Categories) > 0 && len(c.Categories) < len(allCategories)
}

// ToggleCategory adds the category if absent, removes it otherwise
func (c Criteria) ToggleCategory(category string) Criteria {
	if i := slices.Index(c.Categories, category); i >= 0 {
		c.Categories = slices.Delete(slices.Clone(c.Categories), i, i+1)
		return c
	}
	c.Categories = append(slices.Clone(c.Categories), category)
	return c
}

// Reset returns criteria with no restriction
func (c Criteria) Reset() Criteria {
	return Criteria{Status: BucketAll}
}

// Fingerprint returns a canonical form of the criteria. Two criteria with the
// same fingerprint select the same items.
func (c Criteria) Fingerprint() string {
	cats := slices.Clone(c.Categories)
	slices.Sort(cats)
	cats = slices.Compact(cats)
	return strings.Join([]string{
		cases.Fold().String(c.SearchText),
		strings.Join(cats, "\x1f"),
		string(c.bucket()),
	}, "\x1e")
}

// FilterItems returns the items satisfying every active criterion, in input order
// 全ての条件を満たす商品を入力順で返す
func FilterItems(items []Item, criteria Criteria) ([]Item, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	match := newMatcher(criteria)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// newMatcher builds the conjunction of the three sub-predicates
func newMatcher(criteria Criteria) func(Item) bool {
	fold := cases.Fold()
	needle := fold.String(criteria.SearchText)
	bucket := criteria.bucket()

	var categories map[string]struct{}
	if len(criteria.Categories) > 0 {
		categories = make(map[string]struct{}, len(criteria.Categories))
		for _, c := range criteria.Categories {
			categories[c] = struct{}{}
		}
	}

	return func(item Item) bool {
		if needle != "" && !strings.Contains(fold.String(item.Name), needle) {
			return false
		}
		if categories != nil {
			if _, ok := categories[item.Category]; !ok {
				return false
			}
		}
		return bucket.Matches(item.Status())
	}
}
