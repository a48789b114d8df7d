package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rscreport/internal/metrics"
	"rscreport/internal/render"
	"rscreport/internal/report"
	"rscreport/internal/reports"
	"rscreport/internal/rsc"
	"rscreport/internal/store"
)

// ReportFlow 串起单份报表的完整链路：拉取、压平、渲染、发信、落库。
type ReportFlow struct {
	Client    *rsc.Client
	Mailer    *render.Mailer
	Store     *store.Store
	OutputDir string
	Logger    *zap.Logger
}

// ReportNames 返回全部可用的报表名。
func ReportNames() []string {
	return []string{"vms", "events", "compliance", "clusters", "slas", "livemounts", "policies"}
}

// Run 执行一份报表任务并返回记录集。分页中途失败时用已拉到的部分
// 结果继续渲染，只记告警。
func (f *ReportFlow) Run(ctx context.Context, job ReportJob) (*report.RecordSet, error) {
	if f == nil || f.Client == nil {
		return nil, fmt.Errorf("report flow 依赖未注入完整")
	}
	start := time.Now()
	defer func() {
		metrics.ReportDuration.Observe(time.Since(start).Seconds())
	}()

	if f.Logger != nil {
		f.Logger.Info("查询 API", zap.String("report", job.Name))
	}
	rs, err := f.build(ctx, job)
	if err != nil {
		return nil, err
	}
	if f.Logger != nil {
		f.Logger.Info("处理记录完成",
			zap.String("report", job.Name),
			zap.Int("rows", len(rs.Rows)))
	}

	csvPath, err := render.WriteCSV(rs, f.OutputDir, time.Now())
	if err != nil {
		return rs, err
	}

	if job.Email && f.Mailer != nil {
		html, err := render.HTML(rs, render.HTMLOptions{
			Title:          fmt.Sprintf("RSC 报表 - %s", rs.Name),
			ColumnOrder:    job.Columns,
			SortBy:         job.SortBy,
			SortDescending: job.SortDescending,
		}, f.Logger)
		if err != nil {
			return rs, err
		}
		subject := fmt.Sprintf("[rscreport] %s %s", rs.Name, time.Now().UTC().Format("2006-01-02"))
		if err := f.Mailer.Send(ctx, subject, html, csvPath); err != nil {
			return rs, err
		}
	}

	if job.Store && f.Store != nil {
		if err := f.Store.SaveRecordSet(ctx, rs); err != nil {
			return rs, err
		}
	}
	return rs, nil
}

func (f *ReportFlow) build(ctx context.Context, job ReportJob) (*report.RecordSet, error) {
	now := time.Now().UTC()
	switch job.Name {
	case "vms":
		nodes, err := reports.FetchVMs(ctx, f.Client)
		if err := f.tolerate(err, len(nodes), job.Name); err != nil {
			return nil, err
		}
		return reports.BuildVMReport(f.Client.Session(), nodes), nil
	case "events":
		window := report.ResolveWindow(report.WindowOptions{
			DaysToCapture:    job.DaysToCapture,
			HoursToCapture:   job.HoursToCapture,
			MinutesToCapture: job.MinutesToCapture,
		}, now)
		nodes, err := reports.FetchEvents(ctx, f.Client, window, reports.EventFilter{
			Status:   job.EventStatus,
			Severity: job.EventSeverity,
		})
		if err := f.tolerate(err, len(nodes), job.Name); err != nil {
			return nil, err
		}
		return reports.BuildEventReport(nodes), nil
	case "compliance":
		nodes, err := reports.FetchCompliance(ctx, f.Client)
		if err := f.tolerate(err, len(nodes), job.Name); err != nil {
			return nil, err
		}
		return reports.BuildComplianceReport(nodes, now), nil
	case "clusters":
		nodes, err := reports.FetchClusters(ctx, f.Client)
		if err := f.tolerate(err, len(nodes), job.Name); err != nil {
			return nil, err
		}
		return reports.BuildClusterReport(nodes), nil
	case "slas":
		nodes, err := reports.FetchSLADomains(ctx, f.Client)
		if err := f.tolerate(err, len(nodes), job.Name); err != nil {
			return nil, err
		}
		return reports.BuildSLAReport(nodes), nil
	case "livemounts":
		nodes, err := reports.FetchLiveMounts(ctx, f.Client)
		if err := f.tolerate(err, len(nodes), job.Name); err != nil {
			return nil, err
		}
		return reports.BuildLiveMountReport(nodes), nil
	case "policies":
		nodes, err := reports.FetchPolicies(ctx, f.Client)
		if err := f.tolerate(err, len(nodes), job.Name); err != nil {
			return nil, err
		}
		return reports.BuildPolicyReport(nodes), nil
	default:
		return nil, fmt.Errorf("未知的报表: %s", job.Name)
	}
}

// tolerate 决定分页错误是否致命：一条数据都没拿到时报错，否则告警后
// 继续使用部分结果。
func (f *ReportFlow) tolerate(err error, fetched int, name string) error {
	if err == nil {
		return nil
	}
	if fetched == 0 {
		return fmt.Errorf("拉取 %s 失败: %w", name, err)
	}
	if f.Logger != nil {
		f.Logger.Warn("分页中断，使用部分结果",
			zap.String("report", name),
			zap.Int("rows", fetched),
			zap.Error(err))
	}
	return nil
}
