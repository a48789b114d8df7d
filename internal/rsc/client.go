package rsc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"rscreport/internal/metrics"
)

// Query 描述一次 GraphQL 请求。Variables 中的 after 游标是分页过程中
// 唯一会被改写的字段。
type Query struct {
	OperationName string
	Text          string
	Variables     map[string]any
}

// GraphQLError 表示 HTTP 200 但响应体 errors 数组非空的应用层错误。
type GraphQLError struct {
	Messages []string
}

// Error 实现 error 接口。
func (e *GraphQLError) Error() string {
	return "graphql errors: " + strings.Join(e.Messages, "; ")
}

// Client 负责向 RSC GraphQL 接口发起请求并处理分页。
type Client struct {
	session *Session
	logger  *zap.Logger
}

// NewClient 创建 Client。
func NewClient(session *Session, logger *zap.Logger) (*Client, error) {
	if session == nil {
		return nil, errors.New("必须提供 session")
	}
	return &Client{session: session, logger: logger}, nil
}

// Session 返回底层 Session。
func (c *Client) Session() *Session {
	return c.session
}

type gqlRequest struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Do 发起单次 GraphQL 请求，返回 data 字段原文。传输失败返回传输错误；
// errors 数组非空时返回 *GraphQLError，data 仍一并返回。
func (c *Client) Do(ctx context.Context, q Query) (json.RawMessage, error) {
	metrics.QueriesTotal.Inc()

	payload, err := json.Marshal(gqlRequest{
		OperationName: q.OperationName,
		Query:         q.Text,
		Variables:     q.Variables,
	})
	if err != nil {
		return nil, fmt.Errorf("编码 GraphQL 请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.session.GraphQLEndpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("构建 GraphQL 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.session.TokenSource != nil {
		token, err := c.session.TokenSource.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("获取 token 失败: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.session.HTTPClient.Do(req)
	if err != nil {
		metrics.QueryErrorsTotal.Inc()
		return nil, fmt.Errorf("请求 RSC 失败: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		metrics.QueryErrorsTotal.Inc()
		return nil, fmt.Errorf("读取 RSC 响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.QueryErrorsTotal.Inc()
		return nil, fmt.Errorf("RSC 返回状态码 %d", resp.StatusCode)
	}

	var parsed gqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("解析 RSC 响应失败: %w", err)
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		metrics.QueryErrorsTotal.Inc()
		return parsed.Data, &GraphQLError{Messages: msgs}
	}
	return parsed.Data, nil
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connection struct {
	Edges []struct {
		Node json.RawMessage `json:"node"`
	} `json:"edges"`
	PageInfo pageInfo `json:"pageInfo"`
}

// QueryAllPages 按游标逐页拉取 connectionField 下的全部节点，保持服务端
// 返回顺序。不重试、不按 ID 去重；中途失败时返回已累积的节点和错误。
func (c *Client) QueryAllPages(ctx context.Context, q Query, connectionField string) ([]json.RawMessage, error) {
	vars := make(map[string]any, len(q.Variables)+1)
	for k, v := range q.Variables {
		vars[k] = v
	}
	q.Variables = vars

	var nodes []json.RawMessage
	for {
		data, err := c.Do(ctx, q)
		if err != nil {
			return nodes, err
		}
		conn, err := extractConnection(data, connectionField)
		if err != nil {
			return nodes, err
		}
		for _, edge := range conn.Edges {
			nodes = append(nodes, edge.Node)
		}
		metrics.QueryPagesTotal.Inc()

		if !conn.PageInfo.HasNextPage {
			break
		}
		// 游标原样回传
		vars["after"] = conn.PageInfo.EndCursor
	}
	if c.logger != nil {
		c.logger.Debug("分页拉取完成",
			zap.String("operation", q.OperationName),
			zap.Int("nodes", len(nodes)))
	}
	return nodes, nil
}

// extractConnection 从 data 中按点号路径取出连接对象。
func extractConnection(data json.RawMessage, field string) (*connection, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("响应缺少 data 字段")
	}
	current := data
	for _, part := range strings.Split(field, ".") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", field, err)
		}
		next, ok := obj[part]
		if !ok {
			return nil, fmt.Errorf("响应缺少 %s 字段", part)
		}
		current = next
	}
	var conn connection
	if err := json.Unmarshal(current, &conn); err != nil {
		return nil, fmt.Errorf("解析 %s 连接失败: %w", field, err)
	}
	return &conn, nil
}
