package reports

import (
	"context"

	"rscreport/internal/report"
	"rscreport/internal/rsc"
)

const eventConnectionField = "activitySeriesConnection"

const eventQueryText = `query EventSeriesListQuery($first: Int!, $after: String, $filters: ActivitySeriesFilter) {
  activitySeriesConnection(first: $first, after: $after, filters: $filters) {
    edges {
      node {
        id
        activitySeriesId
        objectName
        objectType
        clusterName
        severity
        lastActivityStatus
        lastActivityType
        startTimeMs
        endTimeMs
        lastMessage
        progress
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// EventNode 是事件序列查询返回的单个节点。
type EventNode struct {
	ID                 string  `json:"id"`
	ActivitySeriesID   string  `json:"activitySeriesId"`
	ObjectName         string  `json:"objectName"`
	ObjectType         string  `json:"objectType"`
	ClusterName        *string `json:"clusterName"`
	Severity           string  `json:"severity"`
	LastActivityStatus string  `json:"lastActivityStatus"`
	LastActivityType   string  `json:"lastActivityType"`
	StartTimeMs        *int64  `json:"startTimeMs"`
	EndTimeMs          *int64  `json:"endTimeMs"`
	LastMessage        string  `json:"lastMessage"`
	Progress           *string `json:"progress"`
}

// EventFilter 是事件查询的服务端过滤条件，空字段不下发。
type EventFilter struct {
	Status   string
	Severity string
	Type     string
}

// FetchEvents 拉取时间窗口内的全部事件序列。
func FetchEvents(ctx context.Context, c *rsc.Client, w report.Window, filter EventFilter) ([]EventNode, error) {
	filters := map[string]any{
		"lastUpdatedTimeGt": w.From.Format("2006-01-02T15:04:05Z"),
		"lastUpdatedTimeLt": w.To.Format("2006-01-02T15:04:05Z"),
	}
	if filter.Status != "" {
		filters["lastActivityStatus"] = []string{filter.Status}
	}
	if filter.Severity != "" {
		filters["severity"] = []string{filter.Severity}
	}
	if filter.Type != "" {
		filters["lastActivityType"] = []string{filter.Type}
	}
	q := rsc.Query{
		OperationName: "EventSeriesListQuery",
		Text:          eventQueryText,
		Variables: map[string]any{
			"first":   defaultPageSize,
			"filters": filters,
		},
	}
	return fetchTyped[EventNode](ctx, c, q, eventConnectionField)
}

// BuildEventReport 把事件节点压平成记录集，附带起止时间差与按需标记。
func BuildEventReport(events []EventNode) *report.RecordSet {
	rs := &report.RecordSet{
		Name: "Events",
		Schema: report.Schema{
			{Name: "Object", Link: true},
			{Name: "ObjectType"},
			{Name: "Cluster"},
			{Name: "Type"},
			{Name: "Severity"},
			{Name: "Status"},
			{Name: "StartUTC"},
			{Name: "EndUTC"},
			{Name: "DurationMin"},
			{Name: "DurationSec"},
			{Name: "Duration"},
			{Name: "OnDemand"},
			{Name: "Message"},
			{Name: "EventSeriesID"},
		},
	}
	for _, ev := range events {
		start := report.FromEpochMillis(ev.StartTimeMs)
		end := report.FromEpochMillis(ev.EndTimeMs)
		elapsed := report.Elapsed(start, end)
		rs.Append(map[string]any{
			"Object":        ev.ObjectName,
			"ObjectType":    ev.ObjectType,
			"Cluster":       nilIfNilString(ev.ClusterName),
			"Type":          ev.LastActivityType,
			"Severity":      ev.Severity,
			"Status":        ev.LastActivityStatus,
			"StartUTC":      nilIfNilTime(start),
			"EndUTC":        nilIfNilTime(end),
			"DurationMin":   nilIfNilFloat(elapsed.Minutes),
			"DurationSec":   nilIfNilFloat(elapsed.Seconds),
			"Duration":      nilIfNilString(elapsed.Formatted),
			"OnDemand":      report.OnDemandFromMessage(ev.LastMessage),
			"Message":       ev.LastMessage,
			"EventSeriesID": ev.ActivitySeriesID,
		})
	}
	return rs
}
