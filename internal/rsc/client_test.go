package rsc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	session, err := NewSession(SessionConfig{
		URL:         srv.URL,
		TokenSource: &StaticTokenSource{Value: "test-token"},
	})
	if err != nil {
		t.Fatalf("创建 session 失败: %v", err)
	}
	client, err := NewClient(session, nil)
	if err != nil {
		t.Fatalf("创建 client 失败: %v", err)
	}
	return client
}

func decodeRequest(t *testing.T, r *http.Request) gqlRequest {
	t.Helper()
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("解析请求失败: %v", err)
	}
	return req
}

func TestQueryAllPagesFollowsCursor(t *testing.T) {
	var requests int
	var secondAfter any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		req := decodeRequest(t, r)
		if requests == 2 {
			secondAfter = req.Variables["after"]
		}
		if requests == 1 {
			w.Write([]byte(`{"data":{"vSphereVmNewConnection":{
				"edges":[{"node":{"id":"vm-1"}},{"node":{"id":"vm-2"}}],
				"pageInfo":{"hasNextPage":true,"endCursor":"abc"}}}}`))
			return
		}
		w.Write([]byte(`{"data":{"vSphereVmNewConnection":{
			"edges":[{"node":{"id":"vm-3"}}],
			"pageInfo":{"hasNextPage":false,"endCursor":""}}}}`))
	})

	nodes, err := client.QueryAllPages(context.Background(), Query{
		OperationName: "VSphereVMList",
		Text:          "query VSphereVMList($first: Int, $after: String) { ... }",
		Variables:     map[string]any{"first": 200},
	}, "vSphereVmNewConnection")
	if err != nil {
		t.Fatalf("分页拉取失败: %v", err)
	}
	if requests != 2 {
		t.Fatalf("期望 2 次请求，实际 %d", requests)
	}
	if secondAfter != "abc" {
		t.Fatalf("第二次请求应携带游标 abc，实际 %v", secondAfter)
	}
	if len(nodes) != 3 {
		t.Fatalf("期望 3 个节点，实际 %d", len(nodes))
	}
	var first struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(nodes[0], &first); err != nil || first.ID != "vm-1" {
		t.Fatalf("节点顺序应与服务端一致，实际第一个为 %s", first.ID)
	}
}

func TestQueryAllPagesKeepsCallerVariables(t *testing.T) {
	vars := map[string]any{"first": 200}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"conn":{
			"edges":[],
			"pageInfo":{"hasNextPage":false,"endCursor":""}}}}`))
	})
	if _, err := client.QueryAllPages(context.Background(), Query{Text: "query {}", Variables: vars}, "conn"); err != nil {
		t.Fatalf("分页拉取失败: %v", err)
	}
	if _, ok := vars["after"]; ok {
		t.Fatalf("调用方的变量不应被写入游标")
	}
}

func TestQueryAllPagesPartialOnFailure(t *testing.T) {
	var requests int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Write([]byte(`{"data":{"conn":{
				"edges":[{"node":{"id":"a"}},{"node":{"id":"b"}}],
				"pageInfo":{"hasNextPage":true,"endCursor":"c1"}}}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	nodes, err := client.QueryAllPages(context.Background(), Query{Text: "query {}"}, "conn")
	if err == nil {
		t.Fatalf("第二页失败时应返回错误")
	}
	if len(nodes) != 2 {
		t.Fatalf("中途失败应返回已累积的 2 个节点，实际 %d", len(nodes))
	}
}

func TestDoReturnsGraphQLError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"partial":1},"errors":[{"message":"对象不存在"},{"message":"权限不足"}]}`))
	})

	data, err := client.Do(context.Background(), Query{Text: "query {}"})
	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("应返回 *GraphQLError，实际 %v", err)
	}
	if len(gqlErr.Messages) != 2 || gqlErr.Messages[0] != "对象不存在" {
		t.Fatalf("错误消息不符: %v", gqlErr.Messages)
	}
	if len(data) == 0 {
		t.Fatalf("应用层错误时 data 仍应返回")
	}
}

func TestDoSendsBearerToken(t *testing.T) {
	var auth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{}}`))
	})
	if _, err := client.Do(context.Background(), Query{Text: "query {}"}); err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	if auth != "Bearer test-token" {
		t.Fatalf("Authorization 头不符: %q", auth)
	}
}

func TestExtractConnectionNestedPath(t *testing.T) {
	data := json.RawMessage(`{"outer":{"inner":{
		"edges":[{"node":{"id":"x"}}],
		"pageInfo":{"hasNextPage":false,"endCursor":""}}}}`)
	conn, err := extractConnection(data, "outer.inner")
	if err != nil {
		t.Fatalf("解析嵌套路径失败: %v", err)
	}
	if len(conn.Edges) != 1 {
		t.Fatalf("期望 1 条边，实际 %d", len(conn.Edges))
	}

	if _, err := extractConnection(data, "outer.missing"); err == nil {
		t.Fatalf("缺失字段应报错")
	}
}
