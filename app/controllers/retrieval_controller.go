package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/aihub/rag-go/internal/di"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/aihub/rag-go/internal/metrics"
	"github.com/aihub/rag-go/internal/services"
)

// RetrieveRequest 检索请求
type RetrieveRequest struct {
	Query string `json:"query" validate:"required"`
	Tag   string `json:"tag"`
	TopK  int    `json:"top_k" validate:"gte=0,lte=50"`
}

// RetrievalController exposes similarity search over the fragment corpus.
type RetrievalController struct {
	BaseController
	retrievalService *services.RetrievalService
}

func (c *RetrievalController) Prepare() {
	if c.retrievalService == nil {
		_ = di.Invoke(func(svc *services.RetrievalService) {
			c.retrievalService = svc
		})
	}
}

// POST /api/retrieve
func (c *RetrievalController) Retrieve() {
	metrics.RequestsTotal.WithLabelValues("retrieve").Inc()
	if c.retrievalService == nil {
		c.JSONError(http.StatusServiceUnavailable, "retrieval service unavailable")
		return
	}

	var req RetrieveRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if !c.validateRequest(&req) {
		return
	}

	result, err := c.retrievalService.Retrieve(c.Ctx.Request.Context(), knowledge.Query{
		Text: req.Query,
		Tag:  req.Tag,
		TopK: req.TopK,
	})
	if err != nil {
		c.JSONAppError("retrieve", err)
		return
	}

	items := make([]map[string]interface{}, 0, len(result))
	for _, scored := range result {
		items = append(items, map[string]interface{}{
			"content":        scored.Fragment.Content,
			"tag":            scored.Fragment.Tag,
			"source_id":      scored.Fragment.SourceID,
			"page_number":    scored.Fragment.PageNumber,
			"sequence_index": scored.Fragment.SequenceIndex,
			"distance":       scored.Distance,
		})
	}

	c.JSONSuccess(map[string]interface{}{
		"results": items,
		"count":   len(items),
	})
}
