// Package reports 按接口维度实现各份报表：每个文件包含一条查询、
// 对应的类型化响应结构，以及把节点压平成记录集的纯映射函数。
// 查询与映射放在同一个文件里，字段增删在评审时一眼可见。
package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"rscreport/internal/rsc"
)

// defaultPageSize 是各查询的默认分页大小。
const defaultPageSize = 200

// fetchTyped 拉取全部分页并把每个节点解析为 T。分页中途失败时返回
// 已解析的节点和错误，调用方自行决定是否使用部分结果。
func fetchTyped[T any](ctx context.Context, c *rsc.Client, q rsc.Query, field string) ([]T, error) {
	raw, fetchErr := c.QueryAllPages(ctx, q, field)
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var node T
		if err := json.Unmarshal(r, &node); err != nil {
			return out, fmt.Errorf("解析 %s 节点失败: %w", field, err)
		}
		out = append(out, node)
	}
	return out, fetchErr
}
