package inventory

// Status is the stock status of an item
// 商品の在庫ステータス
type Status string

const (
	StatusNormal Status = "normal" // 正常
	StatusLow    Status = "low"    // 偏低
	StatusOut    Status = "out"    // 欠品
)

// ClassifyStatus maps a quantity/threshold pair to a status.
//
//	quantity == 0              -> out
//	0 < quantity <= threshold  -> low
//	quantity > threshold       -> normal
//
// A zero threshold never yields low for a positive quantity.
// Negative quantities are treated as out.
func ClassifyStatus(quantity, threshold int64) Status {
	switch {
	case quantity <= 0:
		return StatusOut
	case quantity <= threshold:
		return StatusLow
	default:
		return StatusNormal
	}
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusLow, StatusOut:
		return true
	}
	return false
}

// NeedsRestock reports whether the status should raise a low-stock alert
// 補充アラート対象かどうか
func (s Status) NeedsRestock() bool {
	return s == StatusLow || s == StatusOut
}

// Severity orders statuses from most to least urgent: out < low < normal
func (s Status) Severity() int {
	switch s {
	case StatusOut:
		return 0
	case StatusLow:
		return 1
	case StatusNormal:
		return 2
	}
	return 3
}

// Label returns the display text used on the dashboard
// ダッシュボード表示用テキスト
func (s Status) Label() string {
	switch s {
	case StatusNormal:
		return "正常"
	case StatusLow:
		return "偏低"
	case StatusOut:
		return "缺货"
	}
	return string(s)
}
