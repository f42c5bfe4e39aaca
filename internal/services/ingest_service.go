package services

import (
	"context"
	"time"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/kafka"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/aihub/rag-go/internal/metrics"
	"github.com/aihub/rag-go/internal/storage"
	"go.uber.org/zap"
)

// IngestService 文档入库编排
//
// 无持久状态，纯粹组合注入的协作者：加载器、分块器、向量化、向量存储。
type IngestService struct {
	loaders  *knowledge.LoaderRegistry
	chunker  *knowledge.Chunker
	embedder knowledge.Embedder
	store    knowledge.VectorStore
	logger   *zap.Logger
}

// NewIngestService 创建入库服务
func NewIngestService(loaders *knowledge.LoaderRegistry, chunker *knowledge.Chunker,
	embedder knowledge.Embedder, store knowledge.VectorStore) *IngestService {
	return &IngestService{
		loaders:  loaders,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		logger:   logger.Named("ingest"),
	}
}

// Ingest 完整入库流程：解析 → 分块 → 向量化 → 批量写入
//
// 空文档是调用方可见的错误，不是静默的no-op成功。
// 返回实际入库的片段数量。
func (s *IngestService) Ingest(ctx context.Context, data []byte, filename, tag string) (int, error) {
	loader, err := s.loaders.LoaderFor(filename)
	if err != nil {
		return 0, err
	}

	pages, err := loader.Load(data)
	if err != nil {
		return 0, err
	}
	if len(pages) == 0 {
		return 0, apperrors.NewDocumentError(apperrors.ErrCodeDocumentEmpty,
			"document contains no pages")
	}

	drafts := s.chunker.Chunk(pages)
	if len(drafts) == 0 {
		return 0, apperrors.NewDocumentError(apperrors.ErrCodeDocumentEmpty,
			"document contains no extractable text")
	}

	fragments := make([]knowledge.Fragment, 0, len(drafts))
	for _, draft := range drafts {
		embedding, err := s.embedder.Embed(ctx, draft.Content)
		if err != nil {
			return 0, err
		}
		fragments = append(fragments, knowledge.Fragment{
			Content:       draft.Content,
			Embedding:     embedding,
			Tag:           tag,
			SourceID:      filename,
			PageNumber:    draft.PageNumber,
			SequenceIndex: draft.SequenceIndex,
		})
	}

	if err := s.store.Add(ctx, fragments); err != nil {
		return 0, err
	}

	// 归档和事件发布是尽力而为的旁路，失败不影响已完成的入库
	if archive := storage.GetArchive(); archive != nil {
		if err := archive.Store(ctx, filename, data); err != nil {
			s.logger.Warn("Failed to archive source document",
				zap.String("source_id", filename), zap.Error(err))
		}
	}
	if err := kafka.SendIngestionEvent(kafka.IngestionEvent{
		SourceID:  filename,
		Tag:       tag,
		Chunks:    len(fragments),
		Timestamp: time.Now(),
	}); err != nil {
		s.logger.Warn("Failed to publish ingestion event", zap.Error(err))
	}

	metrics.IngestedChunks.Add(float64(len(fragments)))
	s.logger.Info("Document ingested",
		zap.String("source_id", filename),
		zap.String("tag", tag),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(fragments)))

	return len(fragments), nil
}

// SupportedExtensions 返回可入库的文件扩展名
func (s *IngestService) SupportedExtensions() []string {
	return s.loaders.SupportedExtensions()
}
