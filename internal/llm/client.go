package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aihub/rag-go/internal/knowledge"

	apperrors "github.com/aihub/rag-go/internal/errors"
	openai "github.com/sashabaranov/go-openai"
)

// Provider 文本生成服务抽象
//
// 生成调用被视为黑盒：秒级延迟、可能限流或鉴权失败。
// 失败映射为可区分的LLM错误码，由调用方决定如何呈现。
type Provider interface {
	Chat(ctx context.Context, messages []knowledge.Message) (string, error)
	Ready() bool
}

// NoopProvider 默认占位实现
type NoopProvider struct{}

func (n *NoopProvider) Chat(ctx context.Context, messages []knowledge.Message) (string, error) {
	return "", apperrors.NewLLMError(apperrors.ErrCodeLLMAuth, "llm provider not configured")
}

func (n *NoopProvider) Ready() bool {
	return false
}

// Options 生成服务配置
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIProvider 基于OpenAI兼容接口的生成服务客户端
//
// 通过BaseURL可对接OpenRouter等兼容网关。
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewOpenAIProvider 创建生成服务客户端，apiKey为空时返回占位实现
func NewOpenAIProvider(opts Options) Provider {
	if strings.TrimSpace(opts.APIKey) == "" {
		return &NoopProvider{}
	}
	if opts.Model == "" {
		opts.Model = "mistralai/mistral-7b-instruct"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		timeout:   opts.Timeout,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []knowledge.Message) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  chatMessages,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", translateError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperrors.NewLLMError(apperrors.ErrCodeLLMConnection, "llm returned empty response")
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Ready() bool {
	return p.client != nil
}

// translateError 将OpenAI客户端错误映射为可区分的LLM错误码
func translateError(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
	} else if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewLLMError(apperrors.ErrCodeLLMAuth, "llm authentication failed").WithCause(err)
	case status == http.StatusTooManyRequests:
		return apperrors.NewLLMError(apperrors.ErrCodeLLMRateLimit, "llm rate limit exceeded").WithCause(err)
	default:
		return apperrors.NewLLMError(apperrors.ErrCodeLLMConnection, "llm request failed").WithCause(err)
	}
}
