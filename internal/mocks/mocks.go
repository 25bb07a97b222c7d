// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"clipforge/internal/types"

	"github.com/stretchr/testify/mock"
)

// MockTranscriber is a mock implementation of types.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, mediaFile string, language string) (*types.Transcript, error) {
	args := m.Called(ctx, mediaFile, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transcript), args.Error(1)
}

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(systemPrompt, userPrompt string) (string, error) {
	args := m.Called(systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

func (m *MockChatCompleter) DeterministicCompletion(systemPrompt, userPrompt string) (string, error) {
	args := m.Called(systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockUploader is a mock implementation of types.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, localPath string, objectKey string) (string, error) {
	args := m.Called(ctx, localPath, objectKey)
	return args.String(0), args.Error(1)
}
