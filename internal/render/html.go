package render

import (
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"rscreport/internal/report"
)

// HTMLOptions 控制 HTML 报表的标题、列顺序与排序。
type HTMLOptions struct {
	Title          string
	ColumnOrder    []string
	SortBy         string
	SortDescending bool
	GeneratedAt    time.Time
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 16px; }
h1 { font-size: 20px; }
table { border-collapse: collapse; margin-bottom: 16px; }
th { background: #00719e; color: #fff; padding: 6px 10px; text-align: left; }
td { border: 1px solid #ddd; padding: 5px 10px; }
tr:nth-child(even) { background: #f4f4f4; }
.footer { color: #888; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr><th>生成时间 (UTC)</th><th>记录数</th></tr>
<tr><td>{{.Generated}}</td><td>{{.RowCount}}</td></tr>
</table>
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}{{if .Href}}<td><a href="{{.Href}}">{{.Text}}</a></td>{{else}}<td>{{.Text}}</td>{{end}}{{end}}</tr>
{{end}}</table>
<p class="footer">rscreport 自动生成</p>
</body>
</html>
`

type htmlCell struct {
	Text string
	Href string
}

type htmlData struct {
	Title     string
	Generated string
	RowCount  int
	Columns   []string
	Rows      [][]htmlCell
}

// HTML 把记录集渲染为单个 HTML 文档。未指定 ColumnOrder 时按 Schema
// 顺序展示；指定时先取其中存在的列（缺失的告警后跳过），再把未点名的
// 列按字母序补在后面。URL 列不单独展示，存在时用作第一列的超链接。
func HTML(rs *report.RecordSet, opts HTMLOptions, logger *zap.Logger) (string, error) {
	if rs == nil {
		return "", fmt.Errorf("记录集不能为空")
	}
	columns := resolveColumns(rs.Schema, opts.ColumnOrder, logger)
	if len(columns) == 0 {
		return "", fmt.Errorf("记录集没有可渲染的列")
	}

	rows := rs.Rows
	if opts.SortBy != "" {
		sorted := &report.RecordSet{Schema: rs.Schema, Rows: append([]map[string]any(nil), rs.Rows...)}
		sorted.SortBy(opts.SortBy, opts.SortDescending)
		rows = sorted.Rows
	}

	linkFirst := rs.Schema.Has("URL")

	data := htmlData{
		Title:     opts.Title,
		Generated: generatedAt(opts).Format("2006-01-02 15:04:05"),
		RowCount:  len(rows),
		Columns:   columns,
	}
	if data.Title == "" {
		data.Title = rs.Name
	}
	for _, row := range rows {
		cells := make([]htmlCell, 0, len(columns))
		for i, col := range columns {
			cell := htmlCell{Text: FormatValue(row[col])}
			if i == 0 && linkFirst {
				if href, ok := row["URL"].(string); ok && href != "" {
					cell.Href = href
				}
			}
			cells = append(cells, cell)
		}
		data.Rows = append(data.Rows, cells)
	}

	tpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("解析报表模板失败: %w", err)
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("渲染报表失败: %w", err)
	}
	return sb.String(), nil
}

// resolveColumns 计算最终列顺序。URL 列始终不参与展示。
func resolveColumns(schema report.Schema, requested []string, logger *zap.Logger) []string {
	used := map[string]bool{"URL": true}
	var columns []string
	if len(requested) == 0 {
		for _, c := range schema {
			if !used[c.Name] {
				columns = append(columns, c.Name)
			}
		}
		return columns
	}
	for _, name := range requested {
		if name == "URL" {
			continue
		}
		if !schema.Has(name) {
			if logger != nil {
				logger.Warn("忽略不存在的列", zap.String("column", name))
			}
			continue
		}
		if used[name] {
			continue
		}
		columns = append(columns, name)
		used[name] = true
	}
	var rest []string
	for _, c := range schema {
		if !used[c.Name] {
			rest = append(rest, c.Name)
		}
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func generatedAt(opts HTMLOptions) time.Time {
	if opts.GeneratedAt.IsZero() {
		return time.Now().UTC()
	}
	return opts.GeneratedAt.UTC()
}

// FormatValue 把标量转为展示文本，nil 显示为空串，浮点数固定两位小数。
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.UTC().Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(val, 'f', 2, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
