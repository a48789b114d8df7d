package report

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FromEpochMillis 将毫秒级 UNIX 时间戳转为 UTC 时间，nil 入参返回 nil。
func FromEpochMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

// BytesToGB 把字节数换算为十进制 GB（除以 1e9），保留两位小数，
// nil 入参返回 nil。
func BytesToGB(bytes *float64) *float64 {
	if bytes == nil {
		return nil
	}
	gb := Round2(*bytes / 1e9)
	return &gb
}

// Round2 四舍五入保留两位小数。
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ratio 计算 a/b 并保留两位小数，任一入参为 nil 或 b 为 0 时返回 nil。
func Ratio(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	r := Round2(*a / *b)
	return &r
}

// HoursSince 计算 now 距 t 的小时数，保留两位小数，nil 入参返回 nil。
func HoursSince(t *time.Time, now time.Time) *float64 {
	if t == nil {
		return nil
	}
	h := Round2(now.Sub(*t).Hours())
	return &h
}

// Duration 是起止时间差的三元组表示。任一端点缺失时三者均为 nil。
type Duration struct {
	Minutes   *float64
	Seconds   *float64
	Formatted *string
}

// Elapsed 计算 end-start。起止任一为 nil 时返回全 nil 的 Duration。
func Elapsed(start, end *time.Time) Duration {
	if start == nil || end == nil {
		return Duration{}
	}
	d := end.Sub(*start)
	seconds := d.Seconds()
	minutes := Round2(d.Minutes())
	total := int64(seconds)
	formatted := fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	return Duration{
		Minutes:   &minutes,
		Seconds:   &seconds,
		Formatted: &formatted,
	}
}

// OnDemandFromMessage 根据事件消息文本判断是否为按需任务。
func OnDemandFromMessage(message string) bool {
	return strings.Contains(strings.ToLower(message), "on demand")
}
