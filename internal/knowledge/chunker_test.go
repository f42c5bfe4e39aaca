package knowledge

import (
	"strings"
	"testing"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunkerRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name       string
		windowSize int
		overlap    int
	}{
		{"zero window", 0, 0},
		{"negative window", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals window", 100, 100},
		{"overlap exceeds window", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChunker(tc.windowSize, tc.overlap)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeChunkingConfig))
		})
	}
}

func TestChunkSlidingWindowBoundaries(t *testing.T) {
	chunker, err := NewChunker(500, 50)
	require.NoError(t, err)

	// 1200字符，步长450：预期三个片段 0-500、450-950、900-1200
	text := strings.Repeat("ab", 600)
	drafts := chunker.Chunk([]Page{{Number: 1, Text: text}})

	require.Len(t, drafts, 3)
	assert.Equal(t, text[0:500], drafts[0].Content)
	assert.Equal(t, text[450:950], drafts[1].Content)
	assert.Equal(t, text[900:1200], drafts[2].Content)
	for i, draft := range drafts {
		assert.Equal(t, i, draft.SequenceIndex)
		require.NotNil(t, draft.PageNumber)
		assert.Equal(t, 1, *draft.PageNumber)
	}
}

func TestChunkReconstruction(t *testing.T) {
	chunker, err := NewChunker(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("x", 750)
	drafts := chunker.Chunk([]Page{{Number: 1, Text: text}})
	require.NotEmpty(t, drafts)

	// 去掉每个后续片段的重叠前缀后，拼接应还原全文
	var rebuilt strings.Builder
	rebuilt.WriteString(drafts[0].Content)
	for _, draft := range drafts[1:] {
		rebuilt.WriteString(draft.Content[chunker.Overlap():])
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunkSequenceIndexSpansPages(t *testing.T) {
	chunker, err := NewChunker(10, 0)
	require.NoError(t, err)

	pages := []Page{
		{Number: 1, Text: strings.Repeat("a", 25)},
		{Number: 2, Text: strings.Repeat("b", 15)},
	}
	drafts := chunker.Chunk(pages)

	require.Len(t, drafts, 5)
	for i, draft := range drafts {
		assert.Equal(t, i, draft.SequenceIndex)
	}
	assert.Equal(t, 2, *drafts[3].PageNumber)
}

func TestChunkSkipsBlankPages(t *testing.T) {
	chunker, err := NewChunker(100, 10)
	require.NoError(t, err)

	drafts := chunker.Chunk([]Page{
		{Number: 1, Text: "   \n\t  "},
		{Number: 2, Text: "actual content"},
	})

	require.Len(t, drafts, 1)
	assert.Equal(t, "actual content", drafts[0].Content)
	assert.Equal(t, 0, drafts[0].SequenceIndex)
}

func TestChunkShortTextSingleFragment(t *testing.T) {
	chunker, err := NewChunker(500, 50)
	require.NoError(t, err)

	drafts := chunker.Chunk([]Page{{Number: 1, Text: "short"}})
	require.Len(t, drafts, 1)
	assert.Equal(t, "short", drafts[0].Content)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeWhitespace("  a \n\n b\t\tc  "))
	assert.Equal(t, "", normalizeWhitespace(" \n\t "))
}
