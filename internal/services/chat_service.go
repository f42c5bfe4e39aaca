package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/aihub/rag-go/internal/llm"
	"github.com/aihub/rag-go/internal/logger"
	"go.uber.org/zap"
)

// Citation 回答引用的片段来源
type Citation struct {
	SourceID      string `json:"source_id"`
	PageNumber    *int   `json:"page_number,omitempty"`
	SequenceIndex int    `json:"sequence_index"`
}

// ChatResult 问答结果
type ChatResult struct {
	Answer  string     `json:"answer"`
	Sources []Citation `json:"sources"`
}

// ChatService 检索增强问答编排
type ChatService struct {
	retrieval  *RetrievalService
	classifier *knowledge.TagClassifier
	provider   llm.Provider
	maxMessage int
	topK       int
	logger     *zap.Logger
}

// NewChatService 创建问答服务
func NewChatService(retrieval *RetrievalService, classifier *knowledge.TagClassifier,
	provider llm.Provider, maxMessage, topK int) *ChatService {
	if maxMessage <= 0 {
		maxMessage = 2000
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	return &ChatService{
		retrieval:  retrieval,
		classifier: classifier,
		provider:   provider,
		maxMessage: maxMessage,
		topK:       topK,
		logger:     logger.Named("chat"),
	}
}

// Chat 完整问答流程：校验 → 标签路由 → 检索 → 组装提示词 → 调用大模型
//
// 输入校验必须发生在任何向量化调用之前，非法消息不产生外部请求。
// 显式传入的tag优先于关键词分类结果。
func (s *ChatService) Chat(ctx context.Context, message, tag string) (*ChatResult, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeEmptyQuery,
			"chat message must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > s.maxMessage {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeQueryTooLong,
			fmt.Sprintf("chat message exceeds %d characters", s.maxMessage))
	}

	effectiveTag := tag
	if effectiveTag == "" {
		effectiveTag = s.classifier.Classify(trimmed)
	}

	result, err := s.retrieval.Retrieve(ctx, knowledge.Query{
		Text: trimmed,
		Tag:  effectiveTag,
		TopK: s.topK,
	})
	if err != nil {
		return nil, err
	}

	builder := knowledge.NewPromptBuilder()
	sources := make([]Citation, 0, len(result))
	for i, scored := range result {
		label := fmt.Sprintf("Context %d (source: %s)", i+1, scored.Fragment.SourceID)
		builder.AddContext(scored.Fragment.Content, label)
		sources = append(sources, Citation{
			SourceID:      scored.Fragment.SourceID,
			PageNumber:    scored.Fragment.PageNumber,
			SequenceIndex: scored.Fragment.SequenceIndex,
		})
	}
	builder.SetQuery(trimmed)

	messages, err := builder.Build()
	if err != nil {
		return nil, err
	}

	answer, err := s.provider.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Chat completed",
		zap.String("tag", effectiveTag),
		zap.Int("contexts", len(result)))

	return &ChatResult{Answer: answer, Sources: sources}, nil
}
