package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/internal/database"
)

// ProjectStore implements project.Store using GORM.
type ProjectStore struct {
	database.Repository[project.Project, ProjectModel]
}

// NewProjectStore creates a new ProjectStore.
func NewProjectStore(db database.Database) ProjectStore {
	return ProjectStore{
		Repository: database.NewRepository[project.Project, ProjectModel](db, ProjectMapper{}, "project"),
	}
}

// Save creates or updates a project.
func (s ProjectStore) Save(ctx context.Context, p project.Project) (project.Project, error) {
	model := s.Mapper().ToModel(p)
	model.UpdatedAt = time.Now()

	result := s.DB(ctx).Save(&model)
	if result.Error != nil {
		return project.Project{}, fmt.Errorf("save project: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Ensure ProjectStore implements project.Store.
var _ project.Store = ProjectStore{}
