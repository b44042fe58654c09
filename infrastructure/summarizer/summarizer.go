// Package summarizer provides AI-powered summaries of files and diffs.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/neuronhq/neuron/domain/service"
	"github.com/neuronhq/neuron/infrastructure/provider"
	"github.com/neuronhq/neuron/internal/log"
)

// maxInputChars caps summarization input. Longer content is truncated rather
// than rejected so oversized files still get indexed.
const maxInputChars = 10000

// Marker summaries. Persisted in place of a real summary so downstream
// consumers can tell a degraded record from a missing one.
const (
	FailedSummary    = "Failed to generate summary"
	NoChangesSummary = "No changes detected in this commit"
)

const filePrompt = `You are an expert software engineer onboarding a junior developer onto a codebase.
Explain what the following source file does in at most 100 words.
Describe only what is actually in the file. Do not speculate.`

const diffPrompt = `You are an expert software engineer reviewing a commit.
Summarize the following git diff as short bullet points: what changed and where.
Describe only changes present in the diff. Do not speculate.`

// ProviderSummarizer implements service.Summarizer on top of a TextGenerator.
// Provider failures produce marker summaries with a nil error so batch
// pipelines keep their shape; only context cancellation propagates.
type ProviderSummarizer struct {
	generator   provider.TextGenerator
	maxTokens   int
	temperature float64
	logger      *log.Logger
}

// NewProviderSummarizer creates a new ProviderSummarizer.
func NewProviderSummarizer(generator provider.TextGenerator, logger *log.Logger) *ProviderSummarizer {
	if logger == nil {
		logger = log.Default()
	}
	return &ProviderSummarizer{
		generator:   generator,
		maxTokens:   1024,
		temperature: 0.3,
		logger:      logger,
	}
}

// WithMaxTokens sets the maximum tokens for generation.
func (s *ProviderSummarizer) WithMaxTokens(n int) *ProviderSummarizer {
	s.maxTokens = n
	return s
}

// WithTemperature sets the temperature for generation.
func (s *ProviderSummarizer) WithTemperature(t float64) *ProviderSummarizer {
	s.temperature = t
	return s
}

// Summarize generates a summary of text according to kind.
func (s *ProviderSummarizer) Summarize(ctx context.Context, text string, kind service.SummaryKind) (string, error) {
	if kind == service.KindDiff && strings.TrimSpace(text) == "" {
		return NoChangesSummary, nil
	}
	if strings.TrimSpace(text) == "" {
		return FailedSummary, nil
	}

	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	messages := []provider.Message{
		provider.SystemMessage(systemPrompt(kind)),
		provider.UserMessage(text),
	}

	chatReq := provider.NewChatCompletionRequest(messages).
		WithMaxTokens(s.maxTokens).
		WithTemperature(s.temperature)

	chatResp, err := s.generator.ChatCompletion(ctx, chatReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("summarize %s: %w", kind, ctx.Err())
		}
		s.logger.Warn("summary generation failed", "kind", string(kind), "error", err)
		return FailedSummary, nil
	}

	summary := strings.TrimSpace(chatResp.Content())
	if summary == "" {
		s.logger.Warn("summary generation returned empty content", "kind", string(kind))
		return FailedSummary, nil
	}

	return summary, nil
}

func systemPrompt(kind service.SummaryKind) string {
	if kind == service.KindDiff {
		return diffPrompt
	}
	return filePrompt
}

// Ensure ProviderSummarizer implements service.Summarizer.
var _ service.Summarizer = (*ProviderSummarizer)(nil)
