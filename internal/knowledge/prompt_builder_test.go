package knowledge

import (
	"strings"
	"testing"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequiresQuery(t *testing.T) {
	builder := NewPromptBuilder()
	builder.AddContext("some context", "Context 1")

	_, err := builder.Build()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEmptyQuery))
}

func TestBuildProducesSystemAndUserSegments(t *testing.T) {
	builder := NewPromptBuilder()
	builder.AddContext("leave policy text", "Context 1 (source: policy.pdf)")
	builder.SetQuery("How many vacation days?")

	messages, err := builder.Build()
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, RoleUser, messages[1].Role)

	assert.Contains(t, messages[0].Content, "Rules you MUST follow:")
	assert.Contains(t, messages[0].Content, "Constraints:")
	assert.Contains(t, messages[0].Content, "Use ONLY the information present in the provided context.")

	assert.Contains(t, messages[1].Content, "Context 1 (source: policy.pdf):\nleave policy text")
	assert.Contains(t, messages[1].Content, "Question:\nHow many vacation days?")
	assert.True(t, strings.HasSuffix(messages[1].Content, "Answer:"))
}

func TestBuildPreservesContextOrder(t *testing.T) {
	builder := NewPromptBuilder()
	builder.AddContext("first", "A")
	builder.AddContext("second", "B")
	builder.SetQuery("q")

	messages, err := builder.Build()
	require.NoError(t, err)

	user := messages[1].Content
	assert.Less(t, strings.Index(user, "A:\nfirst"), strings.Index(user, "B:\nsecond"))
}

func TestBuildWithoutContexts(t *testing.T) {
	builder := NewPromptBuilder()
	builder.SetQuery("standalone question")

	messages, err := builder.Build()
	require.NoError(t, err)
	assert.Contains(t, messages[1].Content, "Question:\nstandalone question")
	assert.NotContains(t, messages[1].Content, "Context")
}

func TestAddContextDefaultLabel(t *testing.T) {
	builder := NewPromptBuilder()
	builder.AddContext("body", "")
	builder.SetQuery("q")

	messages, err := builder.Build()
	require.NoError(t, err)
	assert.Contains(t, messages[1].Content, "Context:\nbody")
}

func TestResetClearsAccumulatedState(t *testing.T) {
	builder := NewPromptBuilder()
	builder.AddInstruction("custom instruction")
	builder.AddConstraint("custom constraint")
	builder.AddContext("stale context", "Old")
	builder.SetQuery("old query")

	builder.Reset()
	builder.SetQuery("new query")

	messages, err := builder.Build()
	require.NoError(t, err)
	assert.NotContains(t, messages[0].Content, "custom instruction")
	assert.NotContains(t, messages[0].Content, "custom constraint")
	assert.NotContains(t, messages[1].Content, "stale context")
	assert.Contains(t, messages[1].Content, "new query")
}

func TestCustomInstructionsAppended(t *testing.T) {
	builder := NewPromptBuilder()
	builder.AddInstruction("Answer in French.")
	builder.SetQuery("q")

	messages, err := builder.Build()
	require.NoError(t, err)
	assert.Contains(t, messages[0].Content, "- Answer in French.")
}
