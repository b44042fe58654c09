package persistence

import (
	"context"
	"fmt"

	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/internal/database"
)

// QuestionStore implements project.QuestionStore using GORM.
type QuestionStore struct {
	database.Repository[project.Question, QuestionModel]
}

// NewQuestionStore creates a new QuestionStore.
func NewQuestionStore(db database.Database) QuestionStore {
	return QuestionStore{
		Repository: database.NewRepository[project.Question, QuestionModel](db, QuestionMapper{}, "question"),
	}
}

// Save persists a question. Questions are append-only; answers are never
// rewritten after the fact.
func (s QuestionStore) Save(ctx context.Context, q project.Question) (project.Question, error) {
	model := s.Mapper().ToModel(q)

	result := s.DB(ctx).Create(&model)
	if result.Error != nil {
		return project.Question{}, fmt.Errorf("save question: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Ensure QuestionStore implements project.QuestionStore.
var _ project.QuestionStore = QuestionStore{}
