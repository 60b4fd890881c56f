package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int64
		threshold int64
		want      Status
	}{
		{"欠品", 0, 50, StatusOut},
		{"欠品（閾値0）", 0, 0, StatusOut},
		{"閾値ちょうど", 100, 100, StatusLow},
		{"閾値未満", 80, 100, StatusLow},
		{"閾値超過", 101, 100, StatusNormal},
		{"閾値0の正数", 5, 0, StatusNormal},
		{"負数", -3, 10, StatusOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.quantity, tt.threshold))
		})
	}
}

func TestClassifyStatus_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		threshold := rapid.Int64Range(0, 1_000_000).Draw(t, "threshold")
		assert.Equal(t, StatusOut, ClassifyStatus(0, threshold))

		if threshold > 0 {
			q := rapid.Int64Range(1, threshold).Draw(t, "low")
			assert.Equal(t, StatusLow, ClassifyStatus(q, threshold))
		}

		q := rapid.Int64Range(threshold+1, threshold+1_000_000).Draw(t, "normal")
		assert.Equal(t, StatusNormal, ClassifyStatus(q, threshold))
	})
}

func TestStatus_Helpers(t *testing.T) {
	assert.True(t, StatusLow.NeedsRestock())
	assert.True(t, StatusOut.NeedsRestock())
	assert.False(t, StatusNormal.NeedsRestock())

	assert.Less(t, StatusOut.Severity(), StatusLow.Severity())
	assert.Less(t, StatusLow.Severity(), StatusNormal.Severity())

	assert.Equal(t, "缺货", StatusOut.Label())
	assert.False(t, Status("unknown").Valid())
}

func TestItem_MarshalJSON(t *testing.T) {
	item := SeedItems()[8] // 气泡膜 0/50

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "out", decoded["status"])
	assert.Equal(t, "气泡膜", decoded["name"])
	assert.Equal(t, "2024-01-08", decoded["lastUpdated"])

	var back Item
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, item, back)
}
