package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rsc_queries_total",
		Help: "GraphQL 请求次数",
	})

	QueryPagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rsc_query_pages_total",
		Help: "分页拉取的页数",
	})

	QueryErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rsc_query_errors_total",
		Help: "GraphQL 请求失败次数",
	})

	MutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rsc_mutations_total",
		Help: "变更请求次数",
	}, []string{"status"})

	ReportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_duration_seconds",
		Help:    "单次报表生成耗时",
		Buckets: prometheus.DefBuckets,
	})
)

// MustRegister 注册指标，可在 main 中调用。
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(QueriesTotal, QueryPagesTotal, QueryErrorsTotal, MutationsTotal, ReportDuration)
}
