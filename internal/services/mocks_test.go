package services

import (
	"context"

	"github.com/aihub/rag-go/internal/knowledge"
)

// stubEmbedder 确定性向量生成桩，记录调用次数
type stubEmbedder struct {
	dims  int
	calls int
	err   error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	vec := make([]float32, s.dims)
	vec[len([]rune(text))%s.dims] = 1
	return vec, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dims }

func (s *stubEmbedder) Ready() bool { return true }

// stubStore 记录调用参数的向量存储桩
type stubStore struct {
	added      [][]knowledge.Fragment
	lastTopK   int
	lastTag    string
	searchResp knowledge.RetrievalResult
	addErr     error
	searchErr  error
}

func (s *stubStore) Add(ctx context.Context, fragments []knowledge.Fragment) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, fragments)
	return nil
}

func (s *stubStore) Search(ctx context.Context, embedding []float32, topK int, tag string) (knowledge.RetrievalResult, error) {
	s.lastTopK = topK
	s.lastTag = tag
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResp, nil
}

func (s *stubStore) Ready() bool { return true }

// stubProvider 生成服务桩，记录收到的消息
type stubProvider struct {
	answer   string
	err      error
	messages []knowledge.Message
	calls    int
}

func (s *stubProvider) Chat(ctx context.Context, messages []knowledge.Message) (string, error) {
	s.calls++
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubProvider) Ready() bool { return true }
