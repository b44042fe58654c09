// Package service defines domain service contracts implemented by the
// infrastructure layer.
package service

import "context"

// SummaryKind selects the prompt template for a summarization request.
type SummaryKind string

// SummaryKind values.
const (
	// KindFile summarizes source file content.
	KindFile SummaryKind = "file"

	// KindDiff summarizes a unified git diff.
	KindDiff SummaryKind = "diff"
)

// Summarizer generates natural-language summaries of repository content.
// Implementations are fail-open: a provider failure yields a marker summary
// and a nil error so batch pipelines keep their shape.
type Summarizer interface {
	Summarize(ctx context.Context, text string, kind SummaryKind) (string, error)
}
