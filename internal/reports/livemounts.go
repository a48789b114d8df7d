package reports

import (
	"context"
	"fmt"

	"rscreport/internal/report"
	"rscreport/internal/rsc"
)

const liveMountConnectionField = "vSphereLiveMountConnection"

const liveMountQueryText = `query VSphereLiveMountListQuery($first: Int!, $after: String) {
  vSphereLiveMountConnection(first: $first, after: $after) {
    edges {
      node {
        id
        sourceVm { name }
        mountedVm { name }
        cluster { name }
        host { name }
        mountTimestampMs
        mountStatus
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// LiveMountNode 是 vSphere Live Mount 查询返回的单个节点。
type LiveMountNode struct {
	ID       string `json:"id"`
	SourceVM struct {
		Name string `json:"name"`
	} `json:"sourceVm"`
	MountedVM *struct {
		Name string `json:"name"`
	} `json:"mountedVm"`
	Cluster struct {
		Name string `json:"name"`
	} `json:"cluster"`
	Host *struct {
		Name string `json:"name"`
	} `json:"host"`
	MountTimestampMs *int64 `json:"mountTimestampMs"`
	MountStatus      string `json:"mountStatus"`
}

// FetchLiveMounts 拉取全部 vSphere Live Mount，既用于报表也作为
// unmount 前的 ID 校验参照集。
func FetchLiveMounts(ctx context.Context, c *rsc.Client) ([]LiveMountNode, error) {
	q := rsc.Query{
		OperationName: "VSphereLiveMountListQuery",
		Text:          liveMountQueryText,
		Variables:     map[string]any{"first": 50},
	}
	return fetchTyped[LiveMountNode](ctx, c, q, liveMountConnectionField)
}

// LiveMountByID 在已拉取的参照集中查找指定 Live Mount。
func LiveMountByID(mounts []LiveMountNode, id string) (LiveMountNode, error) {
	for _, m := range mounts {
		if m.ID == id {
			return m, nil
		}
	}
	return LiveMountNode{}, fmt.Errorf("未找到 ID 为 %q 的 Live Mount", id)
}

// BuildLiveMountReport 把 Live Mount 节点压平成记录集。
func BuildLiveMountReport(mounts []LiveMountNode) *report.RecordSet {
	rs := &report.RecordSet{
		Name: "LiveMounts",
		Schema: report.Schema{
			{Name: "SourceVM", Link: true},
			{Name: "MountedVM"},
			{Name: "Cluster"},
			{Name: "Host"},
			{Name: "Status"},
			{Name: "MountedUTC"},
			{Name: "MountID"},
		},
	}
	for _, m := range mounts {
		var mountedVM, host any
		if m.MountedVM != nil {
			mountedVM = m.MountedVM.Name
		}
		if m.Host != nil {
			host = m.Host.Name
		}
		rs.Append(map[string]any{
			"SourceVM":   m.SourceVM.Name,
			"MountedVM":  mountedVM,
			"Cluster":    nilIfEmpty(m.Cluster.Name),
			"Host":       host,
			"Status":     m.MountStatus,
			"MountedUTC": nilIfNilTime(report.FromEpochMillis(m.MountTimestampMs)),
			"MountID":    m.ID,
		})
	}
	return rs
}
