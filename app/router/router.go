package router

import (
	"github.com/aihub/rag-go/app/controllers"
	"github.com/aihub/rag-go/app/middleware"
	"github.com/aihub/rag-go/internal/metrics"
	"github.com/beego/beego/v2/server/web"
)

// Init registers all routes. Must be called after config is loaded.
func Init() {
	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")

	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)

	// 文档入库
	ingestController := &controllers.IngestController{}
	web.Router("/api/ingest", ingestController, "post:Upload")
	web.Router("/api/ingest/supported-types", ingestController, "get:SupportedTypes")

	// 片段检索
	web.Router("/api/retrieve", &controllers.RetrievalController{}, "post:Retrieve")

	// 检索增强问答
	web.Router("/api/chat", &controllers.ChatController{}, "post:Chat")

	// Prometheus抓取端点
	web.Handler("/metrics", metrics.Handler())
}
