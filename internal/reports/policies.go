package reports

import (
	"context"

	"rscreport/internal/report"
	"rscreport/internal/rsc"
)

const policyConnectionField = "policyObjectConnection"

// analyzerType 与 analyzerRiskInstance 必须保留在查询里，映射依赖它们；
// 删字段时两处一起改。
const policyQueryText = `query SensitiveDataPolicyQuery($first: Int!, $after: String) {
  policyObjectConnection(first: $first, after: $after) {
    edges {
      node {
        id
        name
        policyName
        analyzerType
        analyzerRiskInstance { risk }
        totalHits
        objectsScanned
        lastUpdatedMs
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// PolicyNode 是敏感数据策略查询返回的单个节点。
type PolicyNode struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	PolicyName           string  `json:"policyName"`
	AnalyzerType         *string `json:"analyzerType"`
	AnalyzerRiskInstance *struct {
		Risk string `json:"risk"`
	} `json:"analyzerRiskInstance"`
	TotalHits      int    `json:"totalHits"`
	ObjectsScanned int    `json:"objectsScanned"`
	LastUpdatedMs  *int64 `json:"lastUpdatedMs"`
}

// FetchPolicies 拉取全部敏感数据策略命中情况。
func FetchPolicies(ctx context.Context, c *rsc.Client) ([]PolicyNode, error) {
	q := rsc.Query{
		OperationName: "SensitiveDataPolicyQuery",
		Text:          policyQueryText,
		Variables:     map[string]any{"first": defaultPageSize},
	}
	return fetchTyped[PolicyNode](ctx, c, q, policyConnectionField)
}

// BuildPolicyReport 把策略节点压平成记录集并按 TotalHits 倒序排列。
func BuildPolicyReport(policies []PolicyNode) *report.RecordSet {
	rs := &report.RecordSet{
		Name: "Policies",
		Schema: report.Schema{
			{Name: "Object", Link: true},
			{Name: "Policy"},
			{Name: "AnalyzerType"},
			{Name: "AnalyzerRisk"},
			{Name: "TotalHits"},
			{Name: "ObjectsScanned"},
			{Name: "LastUpdatedUTC"},
			{Name: "ObjectID"},
		},
	}
	for _, p := range policies {
		var risk any
		if p.AnalyzerRiskInstance != nil {
			risk = p.AnalyzerRiskInstance.Risk
		}
		rs.Append(map[string]any{
			"Object":         p.Name,
			"Policy":         p.PolicyName,
			"AnalyzerType":   nilIfNilString(p.AnalyzerType),
			"AnalyzerRisk":   risk,
			"TotalHits":      p.TotalHits,
			"ObjectsScanned": p.ObjectsScanned,
			"LastUpdatedUTC": nilIfNilTime(report.FromEpochMillis(p.LastUpdatedMs)),
			"ObjectID":       p.ID,
		})
	}
	rs.SortBy("TotalHits", true)
	return rs
}
