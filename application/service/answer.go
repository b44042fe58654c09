package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/search"
	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/domain/store"
	"github.com/neuronhq/neuron/infrastructure/provider"
	"github.com/neuronhq/neuron/infrastructure/summarizer"
	"github.com/neuronhq/neuron/internal/log"
)

// NoGroundingAnswer is returned when retrieval finds nothing relevant. The
// model never sees the question in that case; an ungrounded answer about a
// codebase is worse than none.
const NoGroundingAnswer = "I could not find anything relevant to your question in the indexed codebase. " +
	"Try rephrasing the question, or re-index the project if the code has changed."

const answerPrompt = `You are an expert on the codebase described below.
Answer the user's question using only the provided file summaries and contents.
Reference files by their paths. If the context does not contain the answer, say so plainly.`

const documentPrompt = `You are an expert technical writer.
Write concise markdown documentation for the codebase described by the file summaries below.
Start with a short overview, then describe the main components and how they fit together.
Describe only what the summaries support. Do not speculate.`

// maxContextFileChars caps how much of a single file's content goes into the
// answer prompt. Summaries carry most of the signal; content is supporting
// detail.
const maxContextFileChars = 4000

// AnswerStream delivers a generated answer incrementally. Chunks closes when
// generation finishes; Err reports what ended it. Close cancels generation
// and is safe to call more than once.
type AnswerStream struct {
	chunks     chan string
	references []project.FileReference
	cancel     context.CancelFunc
	closeOnce  sync.Once

	mu  sync.Mutex
	err error
}

func newAnswerStream(references []project.FileReference, cancel context.CancelFunc) *AnswerStream {
	return &AnswerStream{
		chunks:     make(chan string, 16),
		references: references,
		cancel:     cancel,
	}
}

// Chunks returns the channel of answer fragments.
func (s *AnswerStream) Chunks() <-chan string { return s.chunks }

// References returns the file references grounding the answer. Available
// before the first chunk arrives.
func (s *AnswerStream) References() []project.FileReference {
	refs := make([]project.FileReference, len(s.references))
	copy(refs, s.references)
	return refs
}

// Err returns the error that ended the stream, if any. Only meaningful after
// Chunks is closed.
func (s *AnswerStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels generation.
func (s *AnswerStream) Close() {
	s.closeOnce.Do(s.cancel)
}

func (s *AnswerStream) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Answerer produces grounded answers and documentation from indexed units.
type Answerer struct {
	retrieval *Retrieval
	generator provider.TextGenerator
	units     source.UnitStore
	questions project.QuestionStore
	logger    *log.Logger
}

// NewAnswerer creates a new Answerer.
func NewAnswerer(
	retrieval *Retrieval,
	generator provider.TextGenerator,
	units source.UnitStore,
	questions project.QuestionStore,
	logger *log.Logger,
) *Answerer {
	if logger == nil {
		logger = log.Default()
	}
	return &Answerer{
		retrieval: retrieval,
		generator: generator,
		units:     units,
		questions: questions,
		logger:    logger,
	}
}

// Ask retrieves grounding for the question and streams a generated answer.
// Retrieval happens before this returns, so the stream's references are
// complete immediately; generation runs in the background until the chunk
// channel closes.
func (s *Answerer) Ask(ctx context.Context, p project.Project, question string) (*AnswerStream, error) {
	matches, err := s.retrieval.Query(ctx, p.ID(), question)
	if err != nil {
		return nil, err
	}

	references := make([]project.FileReference, len(matches))
	for i, m := range matches {
		references[i] = project.NewFileReference(m.Path(), m.Summary(), m.Similarity())
	}

	genCtx, cancel := context.WithCancel(ctx)
	stream := newAnswerStream(references, cancel)

	if len(matches) == 0 {
		go func() {
			defer close(stream.chunks)
			defer cancel()
			select {
			case stream.chunks <- NoGroundingAnswer:
			case <-genCtx.Done():
			}
		}()
		return stream, nil
	}

	req := provider.NewChatCompletionRequest([]provider.Message{
		provider.SystemMessage(answerPrompt),
		provider.UserMessage(answerContext(matches) + "\n\nQuestion: " + question),
	})

	go s.generate(genCtx, stream, req)
	return stream, nil
}

// generate pumps provider chunks into the stream until the provider is done
// or the stream is cancelled.
func (s *Answerer) generate(ctx context.Context, stream *AnswerStream, req provider.ChatCompletionRequest) {
	defer close(stream.chunks)
	defer stream.Close()

	chatStream, err := s.generator.ChatCompletionStream(ctx, req)
	if err != nil {
		stream.fail(fmt.Errorf("start answer stream: %w", err))
		return
	}
	defer func() { _ = chatStream.Close() }()

	for {
		chunk, err := chatStream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if ctx.Err() == nil {
				stream.fail(fmt.Errorf("answer stream: %w", err))
			}
			return
		}

		select {
		case stream.chunks <- chunk:
		case <-ctx.Done():
			return
		}
	}
}

// Answer drains Ask into a complete answer string.
func (s *Answerer) Answer(ctx context.Context, p project.Project, question string) (string, []project.FileReference, error) {
	stream, err := s.Ask(ctx, p, question)
	if err != nil {
		return "", nil, err
	}
	defer stream.Close()

	var b strings.Builder
	for chunk := range stream.Chunks() {
		b.WriteString(chunk)
	}
	if err := stream.Err(); err != nil {
		return "", nil, err
	}
	return b.String(), stream.References(), nil
}

// SaveQuestion records an answered question against the project.
func (s *Answerer) SaveQuestion(ctx context.Context, projectID int64, question, answer string, references []project.FileReference) (project.Question, error) {
	q := project.NewQuestion(projectID, question, answer, references)
	saved, err := s.questions.Save(ctx, q)
	if err != nil {
		return project.Question{}, fmt.Errorf("save question: %w", err)
	}
	return saved, nil
}

// Questions returns the project's saved questions, newest first.
func (s *Answerer) Questions(ctx context.Context, projectID int64) ([]project.Question, error) {
	questions, err := s.questions.Find(ctx,
		store.WithProjectID(projectID),
		store.WithOrderDesc("created_at"),
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// Document generates markdown documentation for the project from its indexed
// unit summaries. Files whose summarization failed are left out.
func (s *Answerer) Document(ctx context.Context, p project.Project) (string, error) {
	units, err := s.units.Find(ctx, store.WithProjectID(p.ID()))
	if err != nil {
		return "", fmt.Errorf("load source units: %w", err)
	}
	if len(units) == 0 {
		return "", fmt.Errorf("%w: project %d has no indexed units", ErrProjectNotIndexed, p.ID())
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Path() < units[j].Path() })

	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n\n", p.Name())
	for _, u := range units {
		if !u.IsIndexed() || u.Summary() == summarizer.FailedSummary {
			continue
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", u.Path(), u.Summary())
	}

	req := provider.NewChatCompletionRequest([]provider.Message{
		provider.SystemMessage(documentPrompt),
		provider.UserMessage(b.String()),
	})

	resp, err := s.generator.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate documentation: %w", err)
	}
	return strings.TrimSpace(resp.Content()), nil
}

// answerContext renders retrieval matches into the prompt context block.
func answerContext(matches []search.Match) string {
	var b strings.Builder
	b.WriteString("Context from the codebase:\n")
	for _, m := range matches {
		content := m.Content()
		if len(content) > maxContextFileChars {
			content = content[:maxContextFileChars]
		}
		fmt.Fprintf(&b, "\n--- File: %s\nSummary: %s\n%s\n", m.Path(), m.Summary(), content)
	}
	return b.String()
}
