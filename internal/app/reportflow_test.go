package app

import (
	"context"
	"errors"
	"testing"
)

func TestReportNames(t *testing.T) {
	names := ReportNames()
	if len(names) != 7 || names[0] != "vms" || names[6] != "policies" {
		t.Fatalf("报表清单不符: %v", names)
	}
}

func TestTolerate(t *testing.T) {
	f := &ReportFlow{}
	if err := f.tolerate(nil, 0, "vms"); err != nil {
		t.Fatalf("无错误时不应报错: %v", err)
	}

	// 一条数据都没拿到时致命
	fetchErr := errors.New("第一页就失败")
	if err := f.tolerate(fetchErr, 0, "vms"); err == nil {
		t.Fatalf("零结果时应报错")
	}

	// 有部分结果时告警后继续
	if err := f.tolerate(fetchErr, 120, "vms"); err != nil {
		t.Fatalf("有部分结果时应容忍: %v", err)
	}
}

func TestRunRejectsMissingClient(t *testing.T) {
	var f *ReportFlow
	if _, err := f.Run(context.Background(), ReportJob{Name: "vms"}); err == nil {
		t.Fatalf("依赖缺失应报错")
	}
}

func TestBuildUnknownReport(t *testing.T) {
	f := &ReportFlow{}
	if _, err := f.build(context.Background(), ReportJob{Name: "nope"}); err == nil {
		t.Fatalf("未知报表应报错")
	}
}
