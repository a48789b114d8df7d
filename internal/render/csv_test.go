package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatCSV(t *testing.T) {
	data, err := FormatCSV(sampleRecordSet())
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("期望表头加 2 行，实际 %d 行", len(lines))
	}
	if lines[0] != "VM,Cluster,UsedGB,URL" {
		t.Fatalf("表头应按 Schema 顺序: %s", lines[0])
	}
	if lines[1] != "web-01,cluster-a,1.54,https://demo.my.rubrik.com/vm/vm-1" {
		t.Fatalf("数据行不符: %s", lines[1])
	}
	// nil 值显示为空串
	if lines[2] != "db-01,cluster-b,," {
		t.Fatalf("nil 值应为空串: %s", lines[2])
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	path, err := WriteCSV(sampleRecordSet(), filepath.Join(dir, "out"), now)
	if err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if filepath.Base(path) != "VMs-20240501-120000.csv" {
		t.Fatalf("文件名不符: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if !strings.HasPrefix(string(data), "VM,Cluster,UsedGB,URL") {
		t.Fatalf("文件内容不符")
	}
}
