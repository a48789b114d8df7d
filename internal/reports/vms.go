package reports

import (
	"context"
	"time"

	"rscreport/internal/report"
	"rscreport/internal/rsc"
)

const vmConnectionField = "vSphereVmNewConnection"

const vmQueryText = `query VSphereVMListQuery($first: Int!, $after: String) {
  vSphereVmNewConnection(first: $first, after: $after) {
    edges {
      node {
        id
        name
        powerStatus
        vmwareToolsInstalled
        guestOsName
        cluster { id name }
        effectiveSlaDomain { id name }
        protectionDate
        snapshotConnection { count }
        usedBytes
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// VMNode 是 vSphere 虚拟机查询返回的单个节点。
type VMNode struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	PowerStatus          string  `json:"powerStatus"`
	VMwareToolsInstalled *bool   `json:"vmwareToolsInstalled"`
	GuestOsName          *string `json:"guestOsName"`
	Cluster              struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"cluster"`
	EffectiveSlaDomain struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"effectiveSlaDomain"`
	ProtectionDate     *int64 `json:"protectionDate"`
	SnapshotConnection struct {
		Count int `json:"count"`
	} `json:"snapshotConnection"`
	UsedBytes *float64 `json:"usedBytes"`
}

// FetchVMs 拉取全部 vSphere 虚拟机。
func FetchVMs(ctx context.Context, c *rsc.Client) ([]VMNode, error) {
	q := rsc.Query{
		OperationName: "VSphereVMListQuery",
		Text:          vmQueryText,
		Variables:     map[string]any{"first": defaultPageSize},
	}
	return fetchTyped[VMNode](ctx, c, q, vmConnectionField)
}

// BuildVMReport 把虚拟机节点压平成记录集。云上无 cluster 的对象各
// 嵌套字段缺失时填 nil，不报错。
func BuildVMReport(session *rsc.Session, vms []VMNode) *report.RecordSet {
	rs := &report.RecordSet{
		Name: "VMs",
		Schema: report.Schema{
			{Name: "VM", Link: true},
			{Name: "Cluster"},
			{Name: "SLADomain"},
			{Name: "PowerStatus"},
			{Name: "ToolsInstalled"},
			{Name: "GuestOS"},
			{Name: "ProtectedOn"},
			{Name: "Snapshots"},
			{Name: "UsedGB"},
			{Name: "VMID"},
			{Name: "URL"},
		},
	}
	for _, vm := range vms {
		row := map[string]any{
			"VM":             vm.Name,
			"Cluster":        nilIfEmpty(vm.Cluster.Name),
			"SLADomain":      nilIfEmpty(vm.EffectiveSlaDomain.Name),
			"PowerStatus":    vm.PowerStatus,
			"ToolsInstalled": nilIfNilBool(vm.VMwareToolsInstalled),
			"GuestOS":        nilIfNilString(vm.GuestOsName),
			"ProtectedOn":    nilIfNilTime(report.FromEpochMillis(vm.ProtectionDate)),
			"Snapshots":      vm.SnapshotConnection.Count,
			"UsedGB":         nilIfNilFloat(report.BytesToGB(vm.UsedBytes)),
			"VMID":           vm.ID,
			"URL":            nil,
		}
		if session != nil {
			row["URL"] = session.ObjectURL("inventory_hierarchy/vsphere_vm", vm.ID)
		}
		rs.Append(row)
	}
	return rs
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nilIfNilString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nilIfNilBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nilIfNilFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nilIfNilTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
