package controllers

import (
	"github.com/aihub/rag-go/internal/di"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/aihub/rag-go/internal/llm"
)

// RootController serves the service banner.
type RootController struct {
	BaseController
}

// GET /
func (c *RootController) Index() {
	c.JSONSuccess(map[string]interface{}{
		"service": "rag-go",
		"status":  "running",
	})
}

// HealthController reports readiness of the pipeline components.
type HealthController struct {
	BaseController
}

// GET /health
func (c *HealthController) Health() {
	status := map[string]interface{}{
		"status": "ok",
	}

	_ = di.Invoke(func(store knowledge.VectorStore, embedder knowledge.Embedder, provider llm.Provider) {
		status["database"] = store.Ready()
		status["embedder"] = embedder.Ready()
		status["llm"] = provider.Ready()
	})

	c.JSONSuccess(status)
}
