package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rscreport/internal/report"
)

// FormatCSV 把记录集编码为 CSV：一行表头加逐行字符串化的标量。
func FormatCSV(rs *report.RecordSet) ([]byte, error) {
	if rs == nil {
		return nil, fmt.Errorf("记录集不能为空")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	names := rs.Schema.Names()
	if err := w.Write(names); err != nil {
		return nil, fmt.Errorf("写入 CSV 表头失败: %w", err)
	}
	record := make([]string, len(names))
	for _, row := range rs.Rows {
		for i, name := range names {
			record[i] = FormatValue(row[name])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("写入 CSV 行失败: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("编码 CSV 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV 把记录集写到 dir 下，文件名带时间戳后缀避免覆盖，
// 返回完整路径。
func WriteCSV(rs *report.RecordSet, dir string, now time.Time) (string, error) {
	data, err := FormatCSV(rs)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	name := fmt.Sprintf("%s-%s.csv", rs.Name, now.UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入 CSV 文件失败: %w", err)
	}
	return path, nil
}
