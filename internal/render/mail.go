package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"rscreport/internal/util"
)

// SMTPConfig 配置报表邮件发送。
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Mailer 负责把渲染好的报表通过 SMTP 发出。
type Mailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewMailer 创建 Mailer。
func NewMailer(cfg SMTPConfig, logger *zap.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host 不能为空")
	}
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("必须配置发件人和收件人")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg, logger: logger}, nil
}

// Send 发送一封 HTML 报表邮件，attachmentPath 非空时附带 CSV 附件。
func (m *Mailer) Send(ctx context.Context, subject, htmlBody, attachmentPath string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if attachmentPath != "" {
		msg.Attach(attachmentPath)
	}

	d := gomail.NewPlainDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	err := util.Retry(ctx, 2, 2*time.Second, func() error {
		return d.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("发送报表邮件失败: %w", err)
	}
	if m.logger != nil {
		m.logger.Info("报表邮件已发送",
			zap.String("subject", subject),
			zap.Strings("to", m.cfg.To))
	}
	return nil
}
