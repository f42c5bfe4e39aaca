package services

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/aihub/rag-go/internal/metrics"
	"go.uber.org/zap"
)

const defaultTopK = 5

// RetrievalService 相似片段检索编排：向量化查询文本，再按余弦距离搜索
type RetrievalService struct {
	embedder knowledge.Embedder
	store    knowledge.VectorStore
	cache    *RetrievalCache
	logger   *zap.Logger
}

// NewRetrievalService 创建检索服务，cache可以为nil
func NewRetrievalService(embedder knowledge.Embedder, store knowledge.VectorStore,
	cache *RetrievalCache) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		cache:    cache,
		logger:   logger.Named("retrieval"),
	}
}

// Retrieve 检索与查询最相近的片段
//
// TopK缺省取5。结果按距离升序，距离相同时按SequenceIndex和SourceID稳定排序。
func (s *RetrievalService) Retrieve(ctx context.Context, query knowledge.Query) (knowledge.RetrievalResult, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeEmptyQuery,
			"query text must not be empty")
	}
	topK := query.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	if cached := s.cache.Get(ctx, query.Text, query.Tag, topK); cached != nil {
		return cached, nil
	}

	start := time.Now()
	embedding, err := s.embedder.Embed(ctx, query.Text)
	if err != nil {
		return nil, err
	}

	result, err := s.store.Search(ctx, embedding, topK, query.Tag)
	if err != nil {
		return nil, err
	}
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())

	s.cache.Set(ctx, query.Text, query.Tag, topK, result)
	s.logger.Debug("Retrieval completed",
		zap.String("tag", query.Tag),
		zap.Int("top_k", topK),
		zap.Int("results", len(result)))

	return result, nil
}
