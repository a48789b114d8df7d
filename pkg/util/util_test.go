package util

import "testing"

func TestBatch(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	batches := Batch(items, 2)
	if len(batches) != 3 {
		t.Fatalf("期望 3 批，实际 %d", len(batches))
	}
	if len(batches[2]) != 1 || batches[2][0] != 5 {
		t.Fatalf("最后一批不符: %v", batches[2])
	}

	if Batch([]int{}, 2) != nil {
		t.Fatalf("空切片应返回 nil")
	}
	// batchSize <= 0 时整体作为一批
	batches = Batch(items, 0)
	if len(batches) != 1 || len(batches[0]) != 5 {
		t.Fatalf("非法批大小应退化为单批: %v", batches)
	}
}

func TestHashRowStable(t *testing.T) {
	row := map[string]any{"VM": "web-01", "UsedGB": 1.54, "Cluster": nil}
	if HashRow(row) != HashRow(row) {
		t.Fatalf("同一行的 hash 应稳定")
	}

	other := map[string]any{"VM": "web-01", "UsedGB": 1.55, "Cluster": nil}
	if HashRow(row) == HashRow(other) {
		t.Fatalf("不同内容应得到不同 hash")
	}

	// nil 与字符串 "<nil>" 靠分隔符区分
	a := map[string]any{"k": nil}
	b := map[string]any{"k": "<nil>"}
	if HashRow(a) == HashRow(b) {
		t.Fatalf("nil 与字面量应区分")
	}
}
