package reports

import (
	"context"

	"rscreport/internal/report"
	"rscreport/internal/rsc"
)

const clusterConnectionField = "clusterConnection"

const clusterQueryText = `query ClusterCapacityQuery($first: Int!, $after: String) {
  clusterConnection(first: $first, after: $after) {
    edges {
      node {
        id
        name
        version
        status
        nodeCount
        metric {
          totalCapacityBytes
          usedCapacityBytes
          logicalUsedBytes
        }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// ClusterNode 是集群容量查询返回的单个节点。
type ClusterNode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Status    string `json:"status"`
	NodeCount int    `json:"nodeCount"`
	Metric    struct {
		TotalCapacityBytes *float64 `json:"totalCapacityBytes"`
		UsedCapacityBytes  *float64 `json:"usedCapacityBytes"`
		LogicalUsedBytes   *float64 `json:"logicalUsedBytes"`
	} `json:"metric"`
}

// FetchClusters 拉取全部集群。
func FetchClusters(ctx context.Context, c *rsc.Client) ([]ClusterNode, error) {
	q := rsc.Query{
		OperationName: "ClusterCapacityQuery",
		Text:          clusterQueryText,
		Variables:     map[string]any{"first": 50},
	}
	return fetchTyped[ClusterNode](ctx, c, q, clusterConnectionField)
}

// BuildClusterReport 把集群节点压平成容量记录集，含去重比。
func BuildClusterReport(clusters []ClusterNode) *report.RecordSet {
	rs := &report.RecordSet{
		Name: "Clusters",
		Schema: report.Schema{
			{Name: "Cluster", Link: true},
			{Name: "Status"},
			{Name: "Version"},
			{Name: "Nodes"},
			{Name: "TotalGB"},
			{Name: "UsedGB"},
			{Name: "FreeGB"},
			{Name: "DedupeRatio"},
			{Name: "ClusterID"},
		},
	}
	for _, cl := range clusters {
		var free *float64
		if cl.Metric.TotalCapacityBytes != nil && cl.Metric.UsedCapacityBytes != nil {
			f := *cl.Metric.TotalCapacityBytes - *cl.Metric.UsedCapacityBytes
			free = &f
		}
		rs.Append(map[string]any{
			"Cluster":     cl.Name,
			"Status":      cl.Status,
			"Version":     cl.Version,
			"Nodes":       cl.NodeCount,
			"TotalGB":     nilIfNilFloat(report.BytesToGB(cl.Metric.TotalCapacityBytes)),
			"UsedGB":      nilIfNilFloat(report.BytesToGB(cl.Metric.UsedCapacityBytes)),
			"FreeGB":      nilIfNilFloat(report.BytesToGB(free)),
			"DedupeRatio": nilIfNilFloat(report.Ratio(cl.Metric.LogicalUsedBytes, cl.Metric.UsedCapacityBytes)),
			"ClusterID":   cl.ID,
		})
	}
	return rs
}
