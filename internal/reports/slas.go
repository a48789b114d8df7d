package reports

import (
	"context"
	"fmt"
	"strings"

	"rscreport/internal/report"
	"rscreport/internal/rsc"
)

const slaConnectionField = "slaDomains"

const slaQueryText = `query SLADomainListQuery($first: Int!, $after: String) {
  slaDomains(first: $first, after: $after) {
    edges {
      node {
        id
        name
        protectedObjectCount
        baseFrequency { duration unit }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// SLANode 是 SLA Domain 查询返回的单个节点。
type SLANode struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ProtectedObjectCount int    `json:"protectedObjectCount"`
	BaseFrequency        struct {
		Duration int    `json:"duration"`
		Unit     string `json:"unit"`
	} `json:"baseFrequency"`
}

// FetchSLADomains 拉取全部 SLA Domain，既用于报表也作为变更前的
// 名称校验参照集。
func FetchSLADomains(ctx context.Context, c *rsc.Client) ([]SLANode, error) {
	q := rsc.Query{
		OperationName: "SLADomainListQuery",
		Text:          slaQueryText,
		Variables:     map[string]any{"first": defaultPageSize},
	}
	return fetchTyped[SLANode](ctx, c, q, slaConnectionField)
}

// SLAIDByName 在已拉取的参照集中按名字（忽略大小写）解析 SLA ID。
// 未命中视为前置条件失败，调用方应中止操作。
func SLAIDByName(slas []SLANode, name string) (string, error) {
	for _, sla := range slas {
		if strings.EqualFold(sla.Name, name) {
			return sla.ID, nil
		}
	}
	return "", fmt.Errorf("未找到名为 %q 的 SLA Domain", name)
}

// BuildSLAReport 把 SLA 节点压平成记录集。
func BuildSLAReport(slas []SLANode) *report.RecordSet {
	rs := &report.RecordSet{
		Name: "SLADomains",
		Schema: report.Schema{
			{Name: "SLADomain", Link: true},
			{Name: "BaseFrequency"},
			{Name: "ProtectedObjects"},
			{Name: "SLADomainID"},
		},
	}
	for _, sla := range slas {
		freq := fmt.Sprintf("%d %s", sla.BaseFrequency.Duration, strings.ToLower(sla.BaseFrequency.Unit))
		rs.Append(map[string]any{
			"SLADomain":        sla.Name,
			"BaseFrequency":    freq,
			"ProtectedObjects": sla.ProtectedObjectCount,
			"SLADomainID":      sla.ID,
		})
	}
	return rs
}
