package service

import (
	"context"
	"time"

	"studysphere/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUpstreamClient is a testify mock for port.UpstreamClient.
type MockUpstreamClient struct {
	mock.Mock
}

func (m *MockUpstreamClient) CreateResource(ctx context.Context, payload domain.UploadPayload) (*domain.UploadReceipt, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadReceipt), args.Error(1)
}

func (m *MockUpstreamClient) FetchExtractedText(ctx context.Context, documentID string) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}

func (m *MockUpstreamClient) Search(ctx context.Context, query string, filters []string) (*domain.SearchOutcome, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchOutcome), args.Error(1)
}

func (m *MockUpstreamClient) Ask(ctx context.Context, query string) (*domain.Answer, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Answer), args.Error(1)
}

// MockCache is a testify mock for domain.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAnswerGenerator is a testify mock for domain.AnswerGenerator.
type MockAnswerGenerator struct {
	mock.Mock
}

func (m *MockAnswerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
