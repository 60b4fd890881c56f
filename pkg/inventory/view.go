package inventory

import (
	"fmt"
	"slices"
)

// Column identifies a table column
// テーブルの列
type Column string

const (
	ColumnDrag        Column = "drag"
	ColumnSelect      Column = "select"
	ColumnName        Column = "name"
	ColumnCategory    Column = "category"
	ColumnQuantity    Column = "quantity"
	ColumnThreshold   Column = "threshold"
	ColumnLocation    Column = "location"
	ColumnLastUpdated Column = "lastUpdated"
	ColumnActions     Column = "actions"
)

// Columns lists every column in display order
var Columns = []Column{
	ColumnDrag, ColumnSelect, ColumnName, ColumnCategory, ColumnQuantity,
	ColumnThreshold, ColumnLocation, ColumnLastUpdated, ColumnActions,
}

// Hideable reports whether the user may hide the column
func (c Column) Hideable() bool {
	switch c {
	case ColumnCategory, ColumnQuantity, ColumnThreshold, ColumnLocation, ColumnLastUpdated:
		return true
	}
	return false
}

// TableResult is one rendered table page
// 描画用のテーブルページ
type TableResult struct {
	Page
	SortKey        SortKey       `json:"sortKey"`
	SortDirection  SortDirection `json:"sortDirection"`
	SelectedIDs    []int64       `json:"selectedIds"`    // 選択中の全ID（表示外を含む）
	PageSelected   bool          `json:"pageSelected"`   // 表示ページの全行が選択済み
	VisibleColumns []Column      `json:"visibleColumns"` // 表示列
}

// TableView holds the table state: sorting, pagination, id-keyed selection,
// column visibility and the drag display order. It is not safe for
// concurrent use; each view belongs to one presentation.
//
// The display order produced by Reorder is view-local and never written back
// to the store.
// テーブル状態（並び替え・ページング・選択・列表示・ドラッグ順）
type TableView struct {
	sortKey   SortKey
	sortDir   SortDirection
	pageIndex int
	pageSize  int
	selected  map[int64]struct{}
	hidden    map[Column]struct{}
	order     []int64
}

// NewTableView creates a view with the default page size
func NewTableView() *TableView {
	return &TableView{
		sortDir:  SortAsc,
		pageSize: DefaultPageSize,
		selected: make(map[int64]struct{}),
		hidden:   make(map[Column]struct{}),
	}
}

// Sort returns the active sort column and direction
func (v *TableView) Sort() (SortKey, SortDirection) {
	return v.sortKey, v.sortDir
}

// SetSort sets the sort column; SortNone restores store order
func (v *TableView) SetSort(key SortKey, dir SortDirection) error {
	if !key.Valid() {
		return NewValidationError("sort", "並び替えできない列です", string(key))
	}
	if dir != SortAsc && dir != SortDesc {
		return NewValidationError("dir", "無効な並び順です", string(dir))
	}
	v.sortKey, v.sortDir = key, dir
	return nil
}

// ToggleSort behaves like clicking a column header: a new column sorts
// ascending, the active column flips direction.
// 列ヘッダーのクリック動作
func (v *TableView) ToggleSort(key SortKey) error {
	if key == v.sortKey && key != SortNone {
		if v.sortDir == SortAsc {
			v.sortDir = SortDesc
		} else {
			v.sortDir = SortAsc
		}
		return nil
	}
	return v.SetSort(key, SortAsc)
}

// PageIndex returns the current page index
func (v *TableView) PageIndex() int { return v.pageIndex }

// PageSize returns the current page size
func (v *TableView) PageSize() int { return v.pageSize }

// SetPageIndex moves to a page; it is clamped on the next Render
func (v *TableView) SetPageIndex(index int) error {
	if index < 0 {
		return NewValidationError("page", "ページ番号は0以上である必要があります", fmt.Sprintf("%d", index))
	}
	v.pageIndex = index
	return nil
}

// SetPageSize changes the page size to one of AllowedPageSizes
func (v *TableView) SetPageSize(size int) error {
	if !slices.Contains(AllowedPageSizes, size) {
		return NewValidationError("pageSize", "選択できないページサイズです", fmt.Sprintf("%d", size))
	}
	v.pageSize = size
	return nil
}

// NextPage steps forward; Render clamps the result
func (v *TableView) NextPage() { v.pageIndex++ }

func (v *TableView) PreviousPage() {
	if v.pageIndex > 0 {
		v.pageIndex--
	}
}

// Select marks an item as selected. Selection is keyed on id, so it
// survives sorting and filtering even while the item is not shown.
// IDで選択（絞り込み後も保持）
func (v *TableView) Select(id int64) { v.selected[id] = struct{}{} }

// Deselect clears the selection of one item
func (v *TableView) Deselect(id int64) { delete(v.selected, id) }

// ToggleSelected flips the selection of one item
func (v *TableView) ToggleSelected(id int64) {
	if v.IsSelected(id) {
		v.Deselect(id)
		return
	}
	v.Select(id)
}

// IsSelected reports whether the id is selected
func (v *TableView) IsSelected(id int64) bool {
	_, ok := v.selected[id]
	return ok
}

// ClearSelection deselects everything
func (v *TableView) ClearSelection() { clear(v.selected) }

// SelectedIDs returns every selected id in ascending order
func (v *TableView) SelectedIDs() []int64 {
	ids := make([]int64, 0, len(v.selected))
	for id := range v.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SelectedIn returns the selected items among items, in input order
func (v *TableView) SelectedIn(items []Item) []Item {
	out := make([]Item, 0)
	for _, item := range items {
		if v.IsSelected(item.ID) {
			out = append(out, item)
		}
	}
	return out
}

// SetPageSelected selects or deselects every row of a rendered page
// 表示ページの全行を選択・解除
func (v *TableView) SetPageSelected(page Page, selected bool) {
	for _, item := range page.Items {
		if selected {
			v.Select(item.ID)
		} else {
			v.Deselect(item.ID)
		}
	}
}

// IsPageSelected reports whether every row of the page is selected.
// An empty page is never selected.
func (v *TableView) IsPageSelected(page Page) bool {
	if len(page.Items) == 0 {
		return false
	}
	for _, item := range page.Items {
		if !v.IsSelected(item.ID) {
			return false
		}
	}
	return true
}

// SetColumnVisible shows or hides a hideable column
// 列の表示・非表示
func (v *TableView) SetColumnVisible(col Column, visible bool) error {
	if !slices.Contains(Columns, col) {
		return NewValidationError("column", "存在しない列です", string(col))
	}
	if !col.Hideable() {
		if visible {
			return nil
		}
		return NewValidationError("column", "非表示にできない列です", string(col))
	}
	if visible {
		delete(v.hidden, col)
	} else {
		v.hidden[col] = struct{}{}
	}
	return nil
}

// VisibleColumns returns the shown columns in display order
func (v *TableView) VisibleColumns() []Column {
	out := make([]Column, 0, len(Columns))
	for _, col := range Columns {
		if _, ok := v.hidden[col]; !ok {
			out = append(out, col)
		}
	}
	return out
}

// Reorder moves activeID to the position of overID within the displayed
// order of items. items may be a filtered subset: only the slots of those
// items are rearranged, so earlier drags of hidden items are kept. Dragging
// is rejected while a sort column is active.
// ドラッグ並び替え（表示のみ、ストアには書き戻さない）
func (v *TableView) Reorder(items []Item, activeID, overID int64) error {
	if v.sortKey != SortNone {
		return NewValidationError("sort", "並び替え中はドラッグできません", string(v.sortKey))
	}
	shown := make([]int64, 0, len(items))
	for _, item := range v.arrange(items) {
		shown = append(shown, item.ID)
	}
	from := slices.Index(shown, activeID)
	to := slices.Index(shown, overID)
	if from < 0 || to < 0 {
		return ErrItemNotFound
	}
	if from == to {
		return nil
	}
	moved := slices.Insert(slices.Delete(slices.Clone(shown), from, from+1), to, activeID)

	// 表示中の行が占める位置だけを入れ替える
	full := slices.Clone(v.order)
	for _, id := range shown {
		if !slices.Contains(full, id) {
			full = append(full, id)
		}
	}
	visible := make(map[int64]struct{}, len(shown))
	for _, id := range shown {
		visible[id] = struct{}{}
	}
	next := 0
	for i, id := range full {
		if _, ok := visible[id]; ok {
			full[i] = moved[next]
			next++
		}
	}
	v.order = full
	return nil
}

// ResetOrder drops the drag display order
func (v *TableView) ResetOrder() { v.order = nil }

// arrange applies the drag order: ordered ids first, then the rest in input order
func (v *TableView) arrange(items []Item) []Item {
	if len(v.order) == 0 {
		return cloneItems(items)
	}
	byID := make(map[int64]int, len(items))
	for i, item := range items {
		byID[item.ID] = i
	}
	used := make([]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, id := range v.order {
		if i, ok := byID[id]; ok && !used[i] {
			used[i] = true
			out = append(out, items[i])
		}
	}
	for i, item := range items {
		if !used[i] {
			out = append(out, item)
		}
	}
	return out
}

// Render projects items into the current page. The drag order is used only
// while no sort column is active. The stored page index is clamped so it
// never points past the last page.
// 現在のページを描画用に投影（ページ番号は補正して保持）
func (v *TableView) Render(items []Item) (TableResult, error) {
	arranged := items
	if v.sortKey == SortNone {
		arranged = v.arrange(items)
	}
	sorted, err := SortItems(arranged, v.sortKey, v.sortDir)
	if err != nil {
		return TableResult{}, err
	}
	page, err := PaginateItems(sorted, v.pageIndex, v.pageSize)
	if err != nil {
		return TableResult{}, err
	}
	v.pageIndex = page.PageIndex

	return TableResult{
		Page:           page,
		SortKey:        v.sortKey,
		SortDirection:  v.sortDir,
		SelectedIDs:    v.SelectedIDs(),
		PageSelected:   v.IsPageSelected(page),
		VisibleColumns: v.VisibleColumns(),
	}, nil
}
