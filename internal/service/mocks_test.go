package service

import (
	"context"

	"docchat/internal/domain"
	"docchat/internal/vectorstore"
	"github.com/stretchr/testify/mock"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) IsConfigured() bool {
	return true
}

func (m *MockProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) GenerateFromFile(ctx context.Context, mimeType string, data []byte, instruction string) (string, error) {
	args := m.Called(ctx, mimeType, data, instruction)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockVectorStore mocks the vectorstore.Store interface
type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Health(ctx context.Context) vectorstore.Health {
	args := m.Called(ctx)
	return args.Get(0).(vectorstore.Health)
}

func (m *MockVectorStore) StoreDocument(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockVectorStore) SearchDocuments(ctx context.Context, sessionID, query string, topK int) ([]vectorstore.Match, error) {
	args := m.Called(ctx, sessionID, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vectorstore.Match), args.Error(1)
}

func (m *MockVectorStore) SessionDocuments(ctx context.Context, sessionID string) ([]vectorstore.Match, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vectorstore.Match), args.Error(1)
}
