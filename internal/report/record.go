package report

import (
	"sort"
	"time"
)

// Column 描述一列：名字与是否作为超链接来源。
type Column struct {
	Name string
	Link bool
}

// Schema 是一份报表的列定义，决定导出时的列顺序。
type Schema []Column

// Names 返回按序的列名。
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for _, c := range s {
		names = append(names, c.Name)
	}
	return names
}

// Has 判断列是否存在。
func (s Schema) Has(name string) bool {
	for _, c := range s {
		if c.Name == name {
			return true
		}
	}
	return false
}

// RecordSet 是同一 Schema 下的扁平记录集合，行保持服务端返回顺序。
type RecordSet struct {
	Name   string
	Schema Schema
	Rows   []map[string]any
}

// Append 追加一行。
func (rs *RecordSet) Append(row map[string]any) {
	rs.Rows = append(rs.Rows, row)
}

// SortBy 按单列排序，nil 值排在最后。列不存在时不做任何事。
func (rs *RecordSet) SortBy(column string, descending bool) {
	if !rs.Schema.Has(column) {
		return
	}
	sort.SliceStable(rs.Rows, func(i, j int) bool {
		a, b := rs.Rows[i][column], rs.Rows[j][column]
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if descending {
			return lessValue(b, a)
		}
		return lessValue(a, b)
	})
}

// lessValue 比较两个非 nil 标量。
func lessValue(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case bool:
		bv, ok := b.(bool)
		return ok && !av && bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Before(bv)
	default:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		return aok && bok && af < bf
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case *int64:
		if n == nil {
			return 0, false
		}
		return float64(*n), true
	}
	return 0, false
}
