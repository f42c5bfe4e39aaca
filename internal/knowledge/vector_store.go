package knowledge

import (
	"context"
	"math"
	"sort"

	apperrors "github.com/aihub/rag-go/internal/errors"
)

// Fragment 存储在向量索引中的文本片段
//
// 片段一旦入库即不可变，向量索引是持久状态的唯一持有者。
type Fragment struct {
	Content       string
	Embedding     []float32
	Tag           string
	SourceID      string
	PageNumber    *int
	SequenceIndex int
}

// ScoredFragment 检索结果中的片段及其余弦距离（越小越相似）
type ScoredFragment struct {
	Fragment Fragment
	Distance float64
}

// RetrievalResult 检索结果，按距离升序排列，长度不超过topK
type RetrievalResult []ScoredFragment

// Query 检索请求
type Query struct {
	Text string
	Tag  string
	TopK int
}

// VectorStore 向量存储抽象
//
// Add 是原子批量写入：任何一个片段维度不匹配或后端失败，整批都不会入库。
// Search 按余弦距离（1 - 余弦相似度）升序返回最多topK个片段；
// 距离相同时按SequenceIndex、SourceID升序，保证结果确定。
// 匹配片段少于topK不是错误。
type VectorStore interface {
	Add(ctx context.Context, fragments []Fragment) error
	Search(ctx context.Context, embedding []float32, topK int, tag string) (RetrievalResult, error)
	Ready() bool
}

// validateFragments 批量写入前的维度校验，发现不匹配即拒绝整批
func validateFragments(fragments []Fragment, dimensions int) error {
	for i, f := range fragments {
		if len(f.Embedding) != dimensions {
			return apperrors.NewVectorStoreError(apperrors.ErrCodeVectorQuery,
				"embedding dimensionality mismatch").WithDetails(map[string]interface{}{
				"index":    i,
				"expected": dimensions,
				"actual":   len(f.Embedding),
			})
		}
	}
	return nil
}

// cosineDistance 计算余弦距离：1 - cosine_similarity
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// sortResults 按距离、SequenceIndex、SourceID升序排序
func sortResults(results RetrievalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		if results[i].Fragment.SequenceIndex != results[j].Fragment.SequenceIndex {
			return results[i].Fragment.SequenceIndex < results[j].Fragment.SequenceIndex
		}
		return results[i].Fragment.SourceID < results[j].Fragment.SourceID
	})
}
