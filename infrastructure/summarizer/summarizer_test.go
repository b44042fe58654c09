package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronhq/neuron/domain/service"
	"github.com/neuronhq/neuron/infrastructure/provider"
)

// fakeGenerator returns a canned response or error and records the last
// request it saw.
type fakeGenerator struct {
	response string
	err      error
	lastReq  provider.ChatCompletionRequest
	calls    int
}

func (f *fakeGenerator) ChatCompletion(ctx context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return provider.ChatCompletionResponse{}, f.err
	}
	return provider.NewChatCompletionResponse(f.response, "stop", provider.Usage{}), nil
}

func (f *fakeGenerator) ChatCompletionStream(ctx context.Context, req provider.ChatCompletionRequest) (provider.ChatStream, error) {
	return nil, errors.New("not implemented")
}

func TestSummarize_File(t *testing.T) {
	gen := &fakeGenerator{response: "  Implements the HTTP router.  "}
	s := NewProviderSummarizer(gen, nil)

	summary, err := s.Summarize(context.Background(), "package main", service.KindFile)
	require.NoError(t, err)
	assert.Equal(t, "Implements the HTTP router.", summary)

	messages := gen.lastReq.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role())
	assert.Contains(t, messages[0].Content(), "source file")
	assert.Equal(t, "package main", messages[1].Content())
}

func TestSummarize_DiffUsesDiffPrompt(t *testing.T) {
	gen := &fakeGenerator{response: "- changed main.go"}
	s := NewProviderSummarizer(gen, nil)

	_, err := s.Summarize(context.Background(), "diff --git a/main.go b/main.go", service.KindDiff)
	require.NoError(t, err)

	messages := gen.lastReq.Messages()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content(), "git diff")
}

func TestSummarize_EmptyDiffShortCircuits(t *testing.T) {
	gen := &fakeGenerator{response: "should not be called"}
	s := NewProviderSummarizer(gen, nil)

	summary, err := s.Summarize(context.Background(), "   \n  ", service.KindDiff)
	require.NoError(t, err)
	assert.Equal(t, NoChangesSummary, summary)
	assert.Zero(t, gen.calls)
}

func TestSummarize_EmptyFileGetsFailedMarker(t *testing.T) {
	gen := &fakeGenerator{response: "should not be called"}
	s := NewProviderSummarizer(gen, nil)

	summary, err := s.Summarize(context.Background(), "", service.KindFile)
	require.NoError(t, err)
	assert.Equal(t, FailedSummary, summary)
	assert.Zero(t, gen.calls)
}

func TestSummarize_TruncatesLongInput(t *testing.T) {
	gen := &fakeGenerator{response: "summary"}
	s := NewProviderSummarizer(gen, nil)

	long := strings.Repeat("x", maxInputChars+500)
	_, err := s.Summarize(context.Background(), long, service.KindFile)
	require.NoError(t, err)

	messages := gen.lastReq.Messages()
	assert.Len(t, messages[1].Content(), maxInputChars)
}

func TestSummarize_ProviderFailureIsFailOpen(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("provider down")}
	s := NewProviderSummarizer(gen, nil)

	summary, err := s.Summarize(context.Background(), "package main", service.KindFile)
	require.NoError(t, err)
	assert.Equal(t, FailedSummary, summary)
}

func TestSummarize_EmptyResponseIsFailOpen(t *testing.T) {
	gen := &fakeGenerator{response: "   "}
	s := NewProviderSummarizer(gen, nil)

	summary, err := s.Summarize(context.Background(), "package main", service.KindFile)
	require.NoError(t, err)
	assert.Equal(t, FailedSummary, summary)
}

func TestSummarize_ContextCancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{err: context.Canceled}
	s := NewProviderSummarizer(gen, nil)

	_, err := s.Summarize(ctx, "package main", service.KindFile)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize_GenerationSettings(t *testing.T) {
	gen := &fakeGenerator{response: "summary"}
	s := NewProviderSummarizer(gen, nil).WithMaxTokens(256).WithTemperature(0.1)

	_, err := s.Summarize(context.Background(), "package main", service.KindFile)
	require.NoError(t, err)
	assert.Equal(t, 256, gen.lastReq.MaxTokens())
	assert.Equal(t, 0.1, gen.lastReq.Temperature())
}
