package project

import (
	"context"

	"github.com/neuronhq/neuron/domain/store"
)

// Store defines persistence operations for projects.
type Store interface {
	// Save creates or updates a project.
	Save(ctx context.Context, p Project) (Project, error)

	// Find retrieves projects matching the given options.
	Find(ctx context.Context, options ...store.Option) ([]Project, error)

	// FindOne retrieves a single project matching the given options.
	FindOne(ctx context.Context, options ...store.Option) (Project, error)
}

// QuestionStore defines persistence operations for saved questions.
type QuestionStore interface {
	// Save persists a question.
	Save(ctx context.Context, q Question) (Question, error)

	// Find retrieves questions matching the given options.
	Find(ctx context.Context, options ...store.Option) ([]Question, error)
}
