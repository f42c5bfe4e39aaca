package services

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestFixture(t *testing.T, store knowledge.VectorStore) (*IngestService, *stubEmbedder) {
	t.Helper()
	chunker, err := knowledge.NewChunker(100, 20)
	require.NoError(t, err)
	embedder := &stubEmbedder{dims: 4}
	return NewIngestService(knowledge.NewLoaderRegistry(), chunker, embedder, store), embedder
}

func TestIngestTextDocument(t *testing.T) {
	store := &stubStore{}
	svc, embedder := newIngestFixture(t, store)

	text := strings.Repeat("company policy text ", 20)
	count, err := svc.Ingest(context.Background(), []byte(text), "policy.txt", "HR")
	require.NoError(t, err)
	assert.Greater(t, count, 1)

	// 每个片段一次向量化调用，整批一次写入
	assert.Equal(t, count, embedder.calls)
	require.Len(t, store.added, 1)
	require.Len(t, store.added[0], count)

	for i, frag := range store.added[0] {
		assert.Equal(t, "HR", frag.Tag)
		assert.Equal(t, "policy.txt", frag.SourceID)
		assert.Equal(t, i, frag.SequenceIndex)
		assert.Len(t, frag.Embedding, 4)
		assert.NotEmpty(t, frag.Content)
	}
}

func TestIngestUnsupportedExtension(t *testing.T) {
	store := &stubStore{}
	svc, embedder := newIngestFixture(t, store)

	_, err := svc.Ingest(context.Background(), []byte("data"), "photo.png", "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDocumentUnsupported))
	assert.Equal(t, 0, embedder.calls)
	assert.Empty(t, store.added)
}

func TestIngestWhitespaceOnlyDocument(t *testing.T) {
	store := &stubStore{}
	svc, _ := newIngestFixture(t, store)

	_, err := svc.Ingest(context.Background(), []byte("  \n\t  "), "blank.txt", "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDocumentEmpty))
	assert.Empty(t, store.added)
}

func TestIngestEmbeddingFailureStoresNothing(t *testing.T) {
	store := &stubStore{}
	chunker, err := knowledge.NewChunker(100, 20)
	require.NoError(t, err)
	embedder := &stubEmbedder{dims: 4, err: apperrors.NewEmbeddingError("provider down")}
	svc := NewIngestService(knowledge.NewLoaderRegistry(), chunker, embedder, store)

	_, err = svc.Ingest(context.Background(), []byte("valid content here"), "doc.txt", "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEmbeddingFailed))
	assert.Empty(t, store.added)
}

func TestIngestStoreFailurePropagates(t *testing.T) {
	store := &stubStore{addErr: apperrors.NewVectorStoreError(
		apperrors.ErrCodeVectorConnection, "store unreachable")}
	svc, _ := newIngestFixture(t, store)

	_, err := svc.Ingest(context.Background(), []byte("valid content here"), "doc.txt", "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeVectorConnection))
}

func TestIngestRoundTripThroughMemoryStore(t *testing.T) {
	store := knowledge.NewMemoryVectorStore(4)
	svc, embedder := newIngestFixture(t, store)

	count, err := svc.Ingest(context.Background(), []byte("searchable document body"), "doc.txt", "")
	require.NoError(t, err)
	assert.Equal(t, count, store.Len())

	// 入库后用同一向量化器检索应能命中自身
	retrieval := NewRetrievalService(embedder, store, nil)
	result, err := retrieval.Retrieve(context.Background(), knowledge.Query{
		Text: "searchable document body",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result)
	assert.Equal(t, "doc.txt", result[0].Fragment.SourceID)
}

func TestSupportedExtensions(t *testing.T) {
	svc, _ := newIngestFixture(t, &stubStore{})
	assert.Contains(t, svc.SupportedExtensions(), ".pdf")
	assert.Contains(t, svc.SupportedExtensions(), ".txt")
}
