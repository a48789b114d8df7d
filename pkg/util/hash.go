package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// HashRow 返回一行扁平记录的稳定 hash，落库时随行写入，便于比对
// 两次报表之间的内容变化。nil 值参与计算，保证字段缺失也能区分。
func HashRow(row map[string]any) string {
	h := sha256.New()
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		// 类型标记区分 nil 与字面量 "<nil>"
		if row[k] == nil {
			h.Write([]byte{0})
		} else {
			h.Write([]byte{1})
			fmt.Fprintf(h, "%v", row[k])
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
