package services

import (
	"context"
	"testing"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveEmptyQueryRejected(t *testing.T) {
	embedder := &stubEmbedder{dims: 4}
	svc := NewRetrievalService(embedder, &stubStore{}, nil)

	_, err := svc.Retrieve(context.Background(), knowledge.Query{Text: "  \t "})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEmptyQuery))
	assert.Equal(t, 0, embedder.calls)
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	store := &stubStore{}
	svc := NewRetrievalService(&stubEmbedder{dims: 4}, store, nil)

	_, err := svc.Retrieve(context.Background(), knowledge.Query{Text: "question"})
	require.NoError(t, err)
	assert.Equal(t, 5, store.lastTopK)
}

func TestRetrieveHonorsExplicitTopK(t *testing.T) {
	store := &stubStore{}
	svc := NewRetrievalService(&stubEmbedder{dims: 4}, store, nil)

	_, err := svc.Retrieve(context.Background(), knowledge.Query{Text: "question", TopK: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, store.lastTopK)
}

func TestRetrievePassesTagToStore(t *testing.T) {
	store := &stubStore{}
	svc := NewRetrievalService(&stubEmbedder{dims: 4}, store, nil)

	_, err := svc.Retrieve(context.Background(), knowledge.Query{Text: "q", Tag: "FINANCE"})
	require.NoError(t, err)
	assert.Equal(t, "FINANCE", store.lastTag)
}

func TestRetrievePropagatesEmbedderError(t *testing.T) {
	embedder := &stubEmbedder{dims: 4, err: apperrors.NewEmbeddingError("down")}
	svc := NewRetrievalService(embedder, &stubStore{}, nil)

	_, err := svc.Retrieve(context.Background(), knowledge.Query{Text: "q"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEmbeddingFailed))
}

func TestRetrievePropagatesStoreError(t *testing.T) {
	store := &stubStore{searchErr: apperrors.NewVectorStoreError(
		apperrors.ErrCodeVectorQuery, "query failed")}
	svc := NewRetrievalService(&stubEmbedder{dims: 4}, store, nil)

	_, err := svc.Retrieve(context.Background(), knowledge.Query{Text: "q"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeVectorQuery))
}

func TestRetrieveNilCacheIsNoop(t *testing.T) {
	store := &stubStore{searchResp: knowledge.RetrievalResult{
		{Fragment: knowledge.Fragment{Content: "c", SourceID: "s"}, Distance: 0.3},
	}}
	svc := NewRetrievalService(&stubEmbedder{dims: 4}, store, nil)

	result, err := svc.Retrieve(context.Background(), knowledge.Query{Text: "q"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "c", result[0].Fragment.Content)
}

func TestCacheKeyNormalization(t *testing.T) {
	// 大小写和首尾空白不影响缓存键
	assert.Equal(t, cacheKey(" Hello ", "HR", 5), cacheKey("hello", "HR", 5))
	assert.NotEqual(t, cacheKey("hello", "HR", 5), cacheKey("hello", "", 5))
	assert.NotEqual(t, cacheKey("hello", "HR", 5), cacheKey("hello", "HR", 3))
}
