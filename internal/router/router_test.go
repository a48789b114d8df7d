package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	engine := NewEngine(NewReportHandler(nil, nil))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != 200 {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
}

func TestListReports(t *testing.T) {
	engine := NewEngine(NewReportHandler(nil, nil))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if w.Code != 200 {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	var resp struct {
		Reports []string `json:"reports"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Reports) != 7 || resp.Reports[0] != "vms" {
		t.Fatalf("报表列表不符: %v", resp.Reports)
	}
}
