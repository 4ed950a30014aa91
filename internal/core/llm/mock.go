package llm

import (
	"context"
	"sync"

	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

// Mock is a scripted provider for tests. Each Generate call consumes the
// next queued response or error.
type Mock struct {
	mu        sync.Mutex
	responses []mockResponse
	// Prompts records every prompt received, in order.
	Prompts []string
}

type mockResponse struct {
	text string
	err  error
}

// NewMock returns an empty mock; queue behavior with Respond and Fail.
func NewMock() *Mock {
	return &Mock{}
}

// Respond queues a successful response.
func (m *Mock) Respond(text string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = append(m.responses, mockResponse{text: text})

	return m
}

// Fail queues an error response.
func (m *Mock) Fail(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = append(m.responses, mockResponse{err: err})

	return m
}

func (m *Mock) Name() ProviderName { return ProviderMock }

func (m *Mock) IsAvailable() bool { return true }

func (m *Mock) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if len(m.responses) == 0 {
		return "", apperrors.ErrEmptyResponse
	}

	next := m.responses[0]
	m.responses = m.responses[1:]

	if next.err != nil {
		return "", next.err
	}

	return next.text, nil
}
