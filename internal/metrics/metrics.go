package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal 按操作统计请求数
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rag_requests_total",
		Help: "Total number of requests by operation.",
	}, []string{"operation"})

	// RequestErrors 按操作和错误码统计失败请求数
	RequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rag_request_errors_total",
		Help: "Total number of failed requests by operation and error code.",
	}, []string{"operation", "code"})

	// IngestedChunks 入库片段总数
	IngestedChunks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rag_ingested_chunks_total",
		Help: "Total number of fragments stored in the vector index.",
	})

	// RetrievalDuration 检索耗时分布（含向量化和搜索）
	RetrievalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rag_retrieval_duration_seconds",
		Help:    "End-to-end retrieval latency including embedding and search.",
		Buckets: prometheus.DefBuckets,
	})

	// CacheHits 检索缓存命中数
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rag_retrieval_cache_hits_total",
		Help: "Total number of retrieval cache hits.",
	})
)

// Handler 返回prometheus抓取端点的HTTP处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
