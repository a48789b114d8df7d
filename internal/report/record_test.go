package report

import (
	"testing"
	"time"
)

func TestSchemaNamesAndHas(t *testing.T) {
	s := Schema{{Name: "VM", Link: true}, {Name: "Cluster"}}
	names := s.Names()
	if len(names) != 2 || names[0] != "VM" || names[1] != "Cluster" {
		t.Fatalf("列名不符: %v", names)
	}
	if !s.Has("VM") || s.Has("Missing") {
		t.Fatalf("Has 判断不符")
	}
}

func TestSortByString(t *testing.T) {
	rs := RecordSet{
		Schema: Schema{{Name: "Name"}},
		Rows: []map[string]any{
			{"Name": "b"},
			{"Name": nil},
			{"Name": "a"},
			{"Name": "c"},
		},
	}
	rs.SortBy("Name", false)
	got := []any{rs.Rows[0]["Name"], rs.Rows[1]["Name"], rs.Rows[2]["Name"], rs.Rows[3]["Name"]}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" || got[3] != nil {
		t.Fatalf("升序排序不符: %v", got)
	}

	rs.SortBy("Name", true)
	got = []any{rs.Rows[0]["Name"], rs.Rows[1]["Name"], rs.Rows[3]["Name"]}
	if got[0] != "c" || got[1] != "b" || got[2] != nil {
		t.Fatalf("降序时 nil 仍应排最后: %v", got)
	}
}

func TestSortByNumericAndTime(t *testing.T) {
	v1, v2 := 2.5, 1.5
	rs := RecordSet{
		Schema: Schema{{Name: "UsedGB"}},
		Rows: []map[string]any{
			{"UsedGB": &v1},
			{"UsedGB": &v2},
			{"UsedGB": nil},
		},
	}
	rs.SortBy("UsedGB", false)
	if *rs.Rows[0]["UsedGB"].(*float64) != 1.5 || rs.Rows[2]["UsedGB"] != nil {
		t.Fatalf("数值排序不符")
	}

	t1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	rs = RecordSet{
		Schema: Schema{{Name: "StartTime"}},
		Rows:   []map[string]any{{"StartTime": t2}, {"StartTime": t1}},
	}
	rs.SortBy("StartTime", true)
	if rs.Rows[0]["StartTime"].(time.Time) != t2 {
		t.Fatalf("时间降序不符")
	}
}

func TestSortByMissingColumn(t *testing.T) {
	rs := RecordSet{
		Schema: Schema{{Name: "Name"}},
		Rows:   []map[string]any{{"Name": "b"}, {"Name": "a"}},
	}
	rs.SortBy("Missing", false)
	if rs.Rows[0]["Name"] != "b" {
		t.Fatalf("不存在的列不应改变顺序")
	}
}
