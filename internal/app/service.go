package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rscreport/internal/render"
	"rscreport/internal/report"
	"rscreport/internal/reports"
	"rscreport/internal/rsc"
	"rscreport/internal/store"
)

// ReportResult 是一次报表执行的摘要。
type ReportResult struct {
	Name      string
	Rows      int
	RecordSet *report.RecordSet
}

// Service 负责装配各依赖并提供统一入口。
type Service struct {
	cfg    Config
	client *rsc.Client
	flow   *ReportFlow
	store  *store.Store
	logger *zap.Logger
}

// NewService 根据配置构建 Service。
func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	tokenSource, err := buildTokenSource(cfg.RSC)
	if err != nil {
		return nil, err
	}
	session, err := rsc.NewSession(rsc.SessionConfig{
		URL:         cfg.RSC.URL,
		TokenSource: tokenSource,
		Timeout:     time.Duration(cfg.RSC.TimeoutSecond) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	client, err := rsc.NewClient(session, logger)
	if err != nil {
		return nil, err
	}

	var mailer *render.Mailer
	if cfg.SMTP.Enabled {
		mailer, err = render.NewMailer(render.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	var st *store.Store
	if cfg.Store.Enabled {
		st, err = store.Open(store.Config{
			Path:          cfg.Store.Path,
			BatchSize:     cfg.Store.BatchSize,
			RetryAttempts: cfg.Store.Retry.Attempts,
			RetryBackoff:  time.Duration(cfg.Store.Retry.BackoffSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	svc := &Service{
		cfg:    cfg,
		client: client,
		store:  st,
		logger: logger,
		flow: &ReportFlow{
			Client:    client,
			Mailer:    mailer,
			Store:     st,
			OutputDir: cfg.OutputDir,
			Logger:    logger,
		},
	}
	return svc, nil
}

func buildTokenSource(cfg RSC) (rsc.TokenSource, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		return rsc.NewServiceAccountTokenSource(rsc.ServiceAccountConfig{
			Endpoint:     cfg.URL + "/api/client_token",
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		})
	}
	if cfg.StaticToken != "" {
		return &rsc.StaticTokenSource{Value: cfg.StaticToken}, nil
	}
	return nil, fmt.Errorf("必须配置 client_id/client_secret 或 static_token")
}

// Close 释放资源。
func (s *Service) Close(context.Context) error {
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// RunReport 执行一份报表，返回扁平记录集。
func (s *Service) RunReport(ctx context.Context, name string) (result *ReportResult, err error) {
	job := s.cfg.JobByName(name)
	rs, err := s.flow.Run(ctx, job)
	if err != nil {
		return nil, err
	}
	return &ReportResult{Name: rs.Name, Rows: len(rs.Rows), RecordSet: rs}, nil
}

// RunAll 依次执行配置中的全部报表任务，任一失败即中止。
func (s *Service) RunAll(ctx context.Context) error {
	for _, job := range s.cfg.Reports {
		if _, err := s.flow.Run(ctx, job); err != nil {
			return fmt.Errorf("报表 %s 执行失败: %w", job.Name, err)
		}
	}
	return nil
}

// TakeSnapshot 对对象发起按需快照。SLA 名称在变更前先在参照集中校验，
// 未命中直接中止，不发起任何变更请求。
func (s *Service) TakeSnapshot(ctx context.Context, objectTypeName, objectID, slaName string) (rsc.MutationResult, error) {
	t, err := rsc.ParseObjectType(objectTypeName)
	if err != nil {
		return rsc.MutationResult{}, err
	}
	slas, err := reports.FetchSLADomains(ctx, s.client)
	if err != nil && len(slas) == 0 {
		return rsc.MutationResult{}, fmt.Errorf("拉取 SLA 参照集失败: %w", err)
	}
	slaID, err := reports.SLAIDByName(slas, slaName)
	if err != nil {
		return rsc.MutationResult{}, err
	}
	return s.client.TakeOnDemandSnapshot(ctx, t, objectID, slaID), nil
}

// PauseProtection 暂停对象保护。
func (s *Service) PauseProtection(ctx context.Context, objectIDs []string) rsc.MutationResult {
	return s.client.PauseProtection(ctx, objectIDs, true)
}

// ResumeProtection 恢复对象保护。
func (s *Service) ResumeProtection(ctx context.Context, objectIDs []string) rsc.MutationResult {
	return s.client.PauseProtection(ctx, objectIDs, false)
}

// Unmount 结束一个 Live Mount。mountID 必须能在当前参照集中找到，
// 否则中止且不发起变更请求。
func (s *Service) Unmount(ctx context.Context, mountID string, force bool) (rsc.MutationResult, error) {
	mounts, err := reports.FetchLiveMounts(ctx, s.client)
	if err != nil && len(mounts) == 0 {
		return rsc.MutationResult{}, fmt.Errorf("拉取 Live Mount 参照集失败: %w", err)
	}
	if _, err := reports.LiveMountByID(mounts, mountID); err != nil {
		return rsc.MutationResult{}, err
	}
	return s.client.UnmountLiveMount(ctx, mountID, force), nil
}
