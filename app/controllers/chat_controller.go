package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/aihub/rag-go/internal/di"
	"github.com/aihub/rag-go/internal/metrics"
	"github.com/aihub/rag-go/internal/services"
)

// ChatRequest 问答请求
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	Tag     string `json:"tag"`
}

// ChatController handles retrieval-augmented question answering.
type ChatController struct {
	BaseController
	chatService *services.ChatService
}

func (c *ChatController) Prepare() {
	if c.chatService == nil {
		_ = di.Invoke(func(svc *services.ChatService) {
			c.chatService = svc
		})
	}
}

// POST /api/chat
func (c *ChatController) Chat() {
	metrics.RequestsTotal.WithLabelValues("chat").Inc()
	if c.chatService == nil {
		c.JSONError(http.StatusServiceUnavailable, "chat service unavailable")
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if !c.validateRequest(&req) {
		return
	}

	result, err := c.chatService.Chat(c.Ctx.Request.Context(), req.Message, req.Tag)
	if err != nil {
		c.JSONAppError("chat", err)
		return
	}

	c.JSONSuccess(result)
}
