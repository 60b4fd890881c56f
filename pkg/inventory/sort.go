package inventory

import (
	"cmp"
	"slices"
)

// SortKey identifies a sortable column
// 並び替え可能な列
type SortKey string

const (
	SortNone        SortKey = ""
	SortID          SortKey = "id"
	SortName        SortKey = "name"
	SortCategory    SortKey = "category"
	SortQuantity    SortKey = "quantity"
	SortThreshold   SortKey = "threshold"
	SortUnit        SortKey = "unit"
	SortLocation    SortKey = "location"
	SortLastUpdated SortKey = "lastUpdated"
	SortStatus      SortKey = "status"
)

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection parses "asc" or "desc"; empty means ascending
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case "", SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", NewValidationError("dir", "無効な並び順です", s)
}

// comparator returns the column comparison, or nil for an unknown key
func (k SortKey) comparator() func(a, b Item) int {
	switch k {
	case SortID:
		return func(a, b Item) int { return cmp.Compare(a.ID, b.ID) }
	case SortQuantity:
		return func(a, b Item) int { return cmp.Compare(a.Quantity, b.Quantity) }
	case SortThreshold:
		return func(a, b Item) int { return cmp.Compare(a.Threshold, b.Threshold) }
	case SortStatus:
		return func(a, b Item) int { return cmp.Compare(a.Status().Severity(), b.Status().Severity()) }
	case SortName:
		return func(a, b Item) int { return cmp.Compare(a.Name, b.Name) }
	case SortCategory:
		return func(a, b Item) int { return cmp.Compare(a.Category, b.Category) }
	case SortUnit:
		return func(a, b Item) int { return cmp.Compare(a.Unit, b.Unit) }
	case SortLocation:
		return func(a, b Item) int { return cmp.Compare(a.Location, b.Location) }
	case SortLastUpdated:
		return func(a, b Item) int { return cmp.Compare(a.LastUpdated, b.LastUpdated) }
	}
	return nil
}

// Valid reports whether k names a sortable column or is empty
func (k SortKey) Valid() bool {
	return k == SortNone || k.comparator() != nil
}

// SortItems returns a stably sorted copy. An empty key keeps input order.
// Equal elements keep their input order in both directions.
// 安定ソートしたコピーを返す
func SortItems(items []Item, key SortKey, dir SortDirection) ([]Item, error) {
	if dir != SortAsc && dir != SortDesc {
		return nil, NewValidationError("dir", "無効な並び順です", string(dir))
	}
	out := cloneItems(items)
	if key == SortNone {
		return out, nil
	}

	compare := key.comparator()
	if compare == nil {
		return nil, NewValidationError("sort", "並び替えできない列です", string(key))
	}
	if dir == SortDesc {
		asc := compare
		compare = func(a, b Item) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out, nil
}
