package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"rscreport/internal/report"
	"rscreport/internal/rsc"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *rsc.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	session, err := rsc.NewSession(rsc.SessionConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("创建 session 失败: %v", err)
	}
	client, err := rsc.NewClient(session, nil)
	if err != nil {
		t.Fatalf("创建 client 失败: %v", err)
	}
	return client
}

func TestFetchVMsAcrossPages(t *testing.T) {
	var requests int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Write([]byte(`{"data":{"vSphereVmNewConnection":{
				"edges":[{"node":{"id":"vm-1","name":"web-01","powerStatus":"ON"}}],
				"pageInfo":{"hasNextPage":true,"endCursor":"c1"}}}}`))
			return
		}
		w.Write([]byte(`{"data":{"vSphereVmNewConnection":{
			"edges":[{"node":{"id":"vm-2","name":"db-01","powerStatus":"OFF"}}],
			"pageInfo":{"hasNextPage":false,"endCursor":""}}}}`))
	})

	vms, err := FetchVMs(context.Background(), client)
	if err != nil {
		t.Fatalf("拉取失败: %v", err)
	}
	if len(vms) != 2 || vms[0].Name != "web-01" || vms[1].Name != "db-01" {
		t.Fatalf("节点不符: %+v", vms)
	}
}

func TestBuildVMReport(t *testing.T) {
	session, err := rsc.NewSession(rsc.SessionConfig{URL: "https://demo.my.rubrik.com"})
	if err != nil {
		t.Fatalf("创建 session 失败: %v", err)
	}

	tools := true
	os := "CentOS 7"
	protected := int64(1700000000000)
	used := 1536000000.0
	vm := VMNode{
		ID:                   "vm-1",
		Name:                 "web-01",
		PowerStatus:          "ON",
		VMwareToolsInstalled: &tools,
		GuestOsName:          &os,
		ProtectionDate:       &protected,
		UsedBytes:            &used,
	}
	vm.Cluster.Name = "cluster-a"
	vm.EffectiveSlaDomain.Name = "Gold"
	vm.SnapshotConnection.Count = 12

	rs := BuildVMReport(session, []VMNode{vm})
	if len(rs.Rows) != 1 {
		t.Fatalf("期望 1 行，实际 %d", len(rs.Rows))
	}
	row := rs.Rows[0]
	if row["VM"] != "web-01" || row["Cluster"] != "cluster-a" || row["SLADomain"] != "Gold" {
		t.Fatalf("基础列不符: %v", row)
	}
	if row["UsedGB"] != 1.54 {
		t.Fatalf("UsedGB 应为十进制换算 1.54，实际 %v", row["UsedGB"])
	}
	if row["URL"] != "https://demo.my.rubrik.com/inventory_hierarchy/vsphere_vm/vm-1" {
		t.Fatalf("URL 不符: %v", row["URL"])
	}

	// 云上对象无 cluster 等嵌套字段时填 nil，不报错
	bare := VMNode{ID: "vm-2", Name: "cloud-01", PowerStatus: "ON"}
	rs = BuildVMReport(nil, []VMNode{bare})
	row = rs.Rows[0]
	if row["Cluster"] != nil || row["ToolsInstalled"] != nil || row["ProtectedOn"] != nil || row["URL"] != nil {
		t.Fatalf("缺失字段应为 nil: %v", row)
	}
}

// 同一节点映射两次必须得到完全相同的行。
func TestBuildVMReportDeterministic(t *testing.T) {
	used := 2e9
	vm := VMNode{ID: "vm-1", Name: "web-01", PowerStatus: "ON", UsedBytes: &used}
	a := BuildVMReport(nil, []VMNode{vm})
	b := BuildVMReport(nil, []VMNode{vm})
	if !reflect.DeepEqual(a.Rows, b.Rows) {
		t.Fatalf("映射应是确定性的:\n%v\n%v", a.Rows, b.Rows)
	}
}

func TestBuildEventReport(t *testing.T) {
	start := int64(1700000000000)
	end := start + 90*1000
	cluster := "cluster-a"
	ev := EventNode{
		ActivitySeriesID:   "series-1",
		ObjectName:         "web-01",
		ObjectType:         "VmwareVm",
		ClusterName:        &cluster,
		Severity:           "Critical",
		LastActivityStatus: "Failure",
		LastActivityType:   "Backup",
		StartTimeMs:        &start,
		EndTimeMs:          &end,
		LastMessage:        "Started On Demand backup of web-01",
	}

	rs := BuildEventReport([]EventNode{ev})
	row := rs.Rows[0]
	if row["DurationMin"] != 1.5 || row["DurationSec"] != 90.0 || row["Duration"] != "00:01:30" {
		t.Fatalf("时长三元组不符: %v %v %v", row["DurationMin"], row["DurationSec"], row["Duration"])
	}
	if row["OnDemand"] != true {
		t.Fatalf("消息含 on demand 时应标记为按需任务")
	}

	// 结束时间缺失时三元组全为 nil
	ev.EndTimeMs = nil
	row = BuildEventReport([]EventNode{ev}).Rows[0]
	if row["DurationMin"] != nil || row["DurationSec"] != nil || row["Duration"] != nil {
		t.Fatalf("端点缺失时三元组应为 nil: %v", row)
	}
}

func TestFetchEventsFilters(t *testing.T) {
	var vars map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("解析请求失败: %v", err)
		}
		vars = req.Variables
		w.Write([]byte(`{"data":{"activitySeriesConnection":{
			"edges":[],"pageInfo":{"hasNextPage":false,"endCursor":""}}}}`))
	})

	w := report.Window{
		From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	if _, err := FetchEvents(context.Background(), client, w, EventFilter{Status: "Failure"}); err != nil {
		t.Fatalf("拉取失败: %v", err)
	}
	filters, ok := vars["filters"].(map[string]any)
	if !ok {
		t.Fatalf("缺少 filters 变量: %v", vars)
	}
	if filters["lastUpdatedTimeGt"] != "2024-05-01T00:00:00Z" {
		t.Fatalf("窗口下界不符: %v", filters["lastUpdatedTimeGt"])
	}
	status, ok := filters["lastActivityStatus"].([]any)
	if !ok || len(status) != 1 || status[0] != "Failure" {
		t.Fatalf("状态过滤不符: %v", filters["lastActivityStatus"])
	}
	if _, ok := filters["severity"]; ok {
		t.Fatalf("空过滤条件不应下发")
	}
}

func TestBuildComplianceReport(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-36*time.Hour).UnixMilli()
	obj := ComplianceNode{
		ID:               "obj-1",
		Name:             "web-01",
		ObjectType:       "VmwareVm",
		LastSnapshotMs:   &last,
		ComplianceStatus: "IN_COMPLIANCE",
	}
	obj.Cluster.Name = "cluster-a"
	obj.SLADomain.Name = "Gold"

	rs := BuildComplianceReport([]ComplianceNode{obj}, now)
	row := rs.Rows[0]
	if row["HoursSince"] != 36.0 {
		t.Fatalf("HoursSince 不符: %v", row["HoursSince"])
	}
	if row["InCompliance"] != true {
		t.Fatalf("IN_COMPLIANCE 应标记为 true")
	}

	obj.ComplianceStatus = "OUT_OF_COMPLIANCE"
	obj.LastSnapshotMs = nil
	row = BuildComplianceReport([]ComplianceNode{obj}, now).Rows[0]
	if row["InCompliance"] != false || row["LastSnapshotUTC"] != nil || row["HoursSince"] != nil {
		t.Fatalf("缺失快照的失规对象不符: %v", row)
	}
}

func TestBuildClusterReport(t *testing.T) {
	total, used, logical := 10e9, 4e9, 8e9
	cl := ClusterNode{ID: "c-1", Name: "cluster-a", Status: "Connected", NodeCount: 4}
	cl.Metric.TotalCapacityBytes = &total
	cl.Metric.UsedCapacityBytes = &used
	cl.Metric.LogicalUsedBytes = &logical

	row := BuildClusterReport([]ClusterNode{cl}).Rows[0]
	if row["TotalGB"] != 10.0 || row["UsedGB"] != 4.0 || row["FreeGB"] != 6.0 {
		t.Fatalf("容量换算不符: %v", row)
	}
	if row["DedupeRatio"] != 2.0 {
		t.Fatalf("去重比不符: %v", row["DedupeRatio"])
	}

	bare := ClusterNode{ID: "c-2", Name: "cluster-b"}
	row = BuildClusterReport([]ClusterNode{bare}).Rows[0]
	if row["TotalGB"] != nil || row["FreeGB"] != nil || row["DedupeRatio"] != nil {
		t.Fatalf("指标缺失时应为 nil: %v", row)
	}
}

func TestSLAIDByName(t *testing.T) {
	slas := []SLANode{{ID: "sla-1", Name: "Gold"}, {ID: "sla-2", Name: "Silver"}}
	id, err := SLAIDByName(slas, "gold")
	if err != nil || id != "sla-1" {
		t.Fatalf("名称匹配应忽略大小写: %v %v", id, err)
	}
	if _, err := SLAIDByName(slas, "Bronze"); err == nil {
		t.Fatalf("未命中应报错")
	}
}

func TestLiveMountByID(t *testing.T) {
	mounts := []LiveMountNode{{ID: "m-1"}, {ID: "m-2"}}
	if _, err := LiveMountByID(mounts, "m-2"); err != nil {
		t.Fatalf("查找失败: %v", err)
	}
	if _, err := LiveMountByID(mounts, "m-9"); err == nil {
		t.Fatalf("未命中应报错")
	}
}

func TestBuildPolicyReportSortedByHits(t *testing.T) {
	policies := []PolicyNode{
		{ID: "p-1", Name: "share-a", TotalHits: 10},
		{ID: "p-2", Name: "share-b", TotalHits: 300},
		{ID: "p-3", Name: "share-c", TotalHits: 50},
	}
	rs := BuildPolicyReport(policies)
	if rs.Rows[0]["Object"] != "share-b" || rs.Rows[2]["Object"] != "share-a" {
		t.Fatalf("应按 TotalHits 倒序: %v", rs.Rows)
	}
}
