package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// MockOracle implements similarity.Oracle for tests.
type MockOracle struct {
	Mu    sync.Mutex
	Score float64
	Err   error
	Panic bool
	Calls int
}

func (m *MockOracle) Compare(ctx context.Context, a, b string) (float64, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Calls++
	if m.Panic {
		panic("mock oracle panic")
	}
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Score, nil
}

func (m *MockOracle) CallCount() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Calls
}

// MockChat implements oracle.ChatClient. Replies are returned in order; the
// last one repeats once the list is exhausted.
type MockChat struct {
	Mu       sync.Mutex
	Replies  []string
	Err      error
	Requests []openai.ChatCompletionRequest
}

func NewMockChat(replies ...string) *MockChat {
	return &MockChat{Replies: replies}
}

func (m *MockChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Requests = append(m.Requests, req)
	if err := ctx.Err(); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if m.Err != nil {
		return openai.ChatCompletionResponse{}, m.Err
	}
	if len(m.Replies) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("mock chat: no replies configured")
	}
	i := len(m.Requests) - 1
	if i >= len(m.Replies) {
		i = len(m.Replies) - 1
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Replies[i]}},
		},
		Usage: openai.Usage{PromptTokens: 120, CompletionTokens: 2, TotalTokens: 122},
	}, nil
}

func (m *MockChat) RequestCount() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Requests)
}
