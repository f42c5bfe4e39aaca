package knowledge

import (
	"context"
	"sync"

	apperrors "github.com/aihub/rag-go/internal/errors"
)

// MemoryVectorStore 内存向量存储，精确搜索
//
// 默认provider，用于开发和测试环境。
type MemoryVectorStore struct {
	mu         sync.RWMutex
	fragments  []Fragment
	dimensions int
}

// NewMemoryVectorStore 创建内存向量存储
func NewMemoryVectorStore(dimensions int) *MemoryVectorStore {
	return &MemoryVectorStore{dimensions: dimensions}
}

func (s *MemoryVectorStore) Add(ctx context.Context, fragments []Fragment) error {
	if err := validateFragments(fragments, s.dimensions); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 整批校验通过后才追加，保证批量原子性
	for _, f := range fragments {
		embedding := make([]float32, len(f.Embedding))
		copy(embedding, f.Embedding)
		f.Embedding = embedding
		s.fragments = append(s.fragments, f)
	}
	return nil
}

func (s *MemoryVectorStore) Search(ctx context.Context, embedding []float32, topK int, tag string) (RetrievalResult, error) {
	if len(embedding) != s.dimensions {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"query embedding dimensionality mismatch")
	}
	if topK <= 0 {
		return nil, apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
			"topK must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(RetrievalResult, 0, len(s.fragments))
	for _, f := range s.fragments {
		if tag != "" && f.Tag != tag {
			continue
		}
		results = append(results, ScoredFragment{
			Fragment: f,
			Distance: cosineDistance(embedding, f.Embedding),
		})
	}

	sortResults(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryVectorStore) Ready() bool {
	return true
}

// Len 返回已存储的片段数量
func (s *MemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments)
}
