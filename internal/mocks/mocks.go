// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"slidecast/internal/script"
)

// MockSynthesizer is a mock implementation of types.Synthesizer
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string, voiceID *int, outputPath string) (script.AudioResult, error) {
	args := m.Called(ctx, text, voiceID, outputPath)
	return args.Get(0).(script.AudioResult), args.Error(1)
}

// MockClipRenderer is a mock implementation of types.ClipRenderer
type MockClipRenderer struct {
	mock.Mock
}

func (m *MockClipRenderer) RenderClip(ctx context.Context, key, backgroundPath string, audio script.AudioResult, overlayText string) (string, error) {
	args := m.Called(ctx, key, backgroundPath, audio, overlayText)
	return args.String(0), args.Error(1)
}

// MockConcatenator is a mock implementation of types.Concatenator
type MockConcatenator struct {
	mock.Mock
}

func (m *MockConcatenator) Concat(ctx context.Context, clipPaths []string) (string, error) {
	args := m.Called(ctx, clipPaths)
	return args.String(0), args.Error(1)
}
