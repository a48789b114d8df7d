// Package store 把记录集落到本地 sqlite，表结构由记录集的 Schema 推导。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"rscreport/internal/report"
	"rscreport/internal/util"
	pkgutil "rscreport/pkg/util"
)

// Config 配置 sqlite 落库。
type Config struct {
	Path          string
	BatchSize     int
	RetryAttempts int
	RetryBackoff  time.Duration
}

// Store 持有 sqlite 连接。
type Store struct {
	db     *sql.DB
	cfg    Config
	logger *zap.Logger
}

// Open 打开（必要时创建）sqlite 数据库。
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("store path 不能为空")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败: %w", err)
	}
	return &Store{db: db, cfg: cfg, logger: logger}, nil
}

// Close 关闭数据库。
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var identifierPattern = regexp.MustCompile(`[^A-Za-z0-9_]`)

func sanitize(name string) string {
	cleaned := identifierPattern.ReplaceAllString(name, "_")
	if cleaned == "" {
		cleaned = "report"
	}
	return cleaned
}

// columnType 根据该列第一个非 nil 值推导 sqlite 类型。
func columnType(rows []map[string]any, name string) string {
	for _, row := range rows {
		switch row[name].(type) {
		case nil:
			continue
		case int, int64:
			return "INTEGER"
		case float64:
			return "REAL"
		case bool:
			return "INTEGER"
		case time.Time:
			return "TIMESTAMP"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func bindValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return val
	}
}

// SaveRecordSet 重建报表对应的表并批量写入全部行，每行附带内容 hash
// 和导入时间。写入失败按配置重试。
func (s *Store) SaveRecordSet(ctx context.Context, rs *report.RecordSet) error {
	if s == nil || s.db == nil {
		return errors.New("store 未初始化")
	}
	if rs == nil || len(rs.Schema) == 0 {
		return errors.New("记录集不能为空")
	}

	table := sanitize(rs.Name)
	names := rs.Schema.Names()

	var defs []string
	for _, name := range names {
		defs = append(defs, fmt.Sprintf("%s %s", sanitize(name), columnType(rs.Rows, name)))
	}
	defs = append(defs, "row_hash TEXT", "imported_at TIMESTAMP")

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return fmt.Errorf("删除旧表失败: %w", err)
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("创建表 %s 失败: %w", table, err)
	}

	cols := make([]string, 0, len(names)+2)
	for _, name := range names {
		cols = append(cols, sanitize(name))
	}
	cols = append(cols, "row_hash", "imported_at")
	placeholders := strings.TrimRight(strings.Repeat("?, ", len(cols)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)

	importedAt := time.Now().UTC().Format(time.RFC3339)
	for _, batch := range pkgutil.Batch(rs.Rows, s.cfg.BatchSize) {
		batch := batch
		err := util.Retry(ctx, s.cfg.RetryAttempts, s.cfg.RetryBackoff, func() error {
			return s.insertBatch(ctx, insertSQL, names, batch, importedAt)
		})
		if err != nil {
			return fmt.Errorf("写入表 %s 失败: %w", table, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("报表已落库",
			zap.String("table", table),
			zap.Int("rows", len(rs.Rows)))
	}
	return nil
}

func (s *Store) insertBatch(ctx context.Context, insertSQL string, names []string, rows []map[string]any, importedAt string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("准备插入语句失败: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, 0, len(names)+2)
		for _, name := range names {
			args = append(args, bindValue(row[name]))
		}
		args = append(args, pkgutil.HashRow(row), importedAt)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("插入记录失败: %w", err)
		}
	}
	return tx.Commit()
}
