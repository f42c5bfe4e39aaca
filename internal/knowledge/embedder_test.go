package knowledge

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIEmbedderWithoutKeyReturnsNoop(t *testing.T) {
	embedder := NewOpenAIEmbedder("  ", "", "text-embedding-3-small", time.Second)

	assert.IsType(t, &NoopEmbedder{}, embedder)
	assert.False(t, embedder.Ready())
	assert.Equal(t, 0, embedder.Dimensions())

	_, err := embedder.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEmbeddingFailed))
}

func TestNewOpenAIEmbedderKnownModelDimensions(t *testing.T) {
	cases := map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}

	for model, dims := range cases {
		embedder := NewOpenAIEmbedder("sk-test", "", model, time.Second)
		assert.Equal(t, dims, embedder.Dimensions(), model)
		assert.True(t, embedder.Ready(), model)
	}
}

func TestOpenAIEmbedderRejectsEmptyText(t *testing.T) {
	embedder := NewOpenAIEmbedder("sk-test", "", "text-embedding-3-small", time.Second)

	_, err := embedder.Embed(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEmbeddingFailed))
}
