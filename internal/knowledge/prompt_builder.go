package knowledge

import (
	"strings"

	apperrors "github.com/aihub/rag-go/internal/errors"
)

// Message 发送给生成服务的消息段
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type contextSection struct {
	label   string
	content string
}

// PromptBuilder 提示词构建器
//
// 有状态、单次使用：一次组装对应一次Build，复用前必须显式Reset，
// 防止共享实例时上一次请求的上下文串入下一次。
type PromptBuilder struct {
	instructions []string
	constraints  []string
	contexts     []contextSection
	query        string
	hasQuery     bool
}

// 默认的文档问答指令，要求回答严格基于检索到的上下文
var defaultInstructions = []string{
	"You are a document-grounded assistant.",
	"Use ONLY the information present in the provided context.",
	"Do NOT use any external knowledge.",
	"Do NOT make assumptions or guesses.",
	`If the answer is not present in the context, say: "The document does not contain this information."`,
	"Be concise and clear.",
	"Summarize information instead of copying raw text.",
}

var defaultConstraints = []string{
	"Do NOT include IDs, reference numbers, signatures, or contact details unless explicitly asked.",
}

// NewPromptBuilder 创建带默认指令的提示词构建器
func NewPromptBuilder() *PromptBuilder {
	b := &PromptBuilder{}
	b.Reset()
	return b
}

// Reset 重置为初始状态，恢复默认指令
func (b *PromptBuilder) Reset() *PromptBuilder {
	b.instructions = append([]string(nil), defaultInstructions...)
	b.constraints = append([]string(nil), defaultConstraints...)
	b.contexts = nil
	b.query = ""
	b.hasQuery = false
	return b
}

// AddInstruction 追加系统指令，保持调用顺序
func (b *PromptBuilder) AddInstruction(instruction string) *PromptBuilder {
	b.instructions = append(b.instructions, instruction)
	return b
}

// AddContext 追加带标签的上下文段落，保持调用顺序
func (b *PromptBuilder) AddContext(text, label string) *PromptBuilder {
	if label == "" {
		label = "Context"
	}
	b.contexts = append(b.contexts, contextSection{label: label, content: text})
	return b
}

// SetQuery 设置用户问题，Build之前必须调用
func (b *PromptBuilder) SetQuery(query string) *PromptBuilder {
	b.query = query
	b.hasQuery = true
	return b
}

// AddConstraint 追加输出约束，保持调用顺序
func (b *PromptBuilder) AddConstraint(constraint string) *PromptBuilder {
	b.constraints = append(b.constraints, constraint)
	return b
}

// Build 组装消息序列：恰好一个system段和一个user段
//
// 问题是必需的，上下文是可选的，没有上下文时生成无检索背景的提示。
func (b *PromptBuilder) Build() ([]Message, error) {
	if !b.hasQuery {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeEmptyQuery,
			"prompt requires a query; call SetQuery before Build")
	}

	return []Message{
		{Role: RoleSystem, Content: b.buildSystemPrompt()},
		{Role: RoleUser, Content: b.buildUserPrompt()},
	}, nil
}

func (b *PromptBuilder) buildSystemPrompt() string {
	var parts []string

	if len(b.instructions) > 0 {
		lines := make([]string, 0, len(b.instructions))
		for _, inst := range b.instructions {
			lines = append(lines, "- "+inst)
		}
		parts = append(parts, "Rules you MUST follow:\n"+strings.Join(lines, "\n"))
	}

	if len(b.constraints) > 0 {
		lines := make([]string, 0, len(b.constraints))
		for _, c := range b.constraints {
			lines = append(lines, "- "+c)
		}
		parts = append(parts, "Constraints:\n"+strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}

func (b *PromptBuilder) buildUserPrompt() string {
	var parts []string

	for _, ctx := range b.contexts {
		parts = append(parts, ctx.label+":\n"+ctx.content)
	}

	parts = append(parts, "Question:\n"+b.query)
	parts = append(parts, "Answer:")

	return strings.Join(parts, "\n\n")
}
