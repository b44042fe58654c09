package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/neuronhq/neuron/domain/commit"
	"github.com/neuronhq/neuron/internal/database"
)

// CommitStore implements commit.Store using GORM.
type CommitStore struct {
	database.Repository[commit.Record, CommitRecordModel]
}

// NewCommitStore creates a new CommitStore.
func NewCommitStore(db database.Database) CommitStore {
	return CommitStore{
		Repository: database.NewRepository[commit.Record, CommitRecordModel](db, CommitRecordMapper{}, "commit record"),
	}
}

// SaveAll persists records, ignoring rows whose (project_id, commit_sha)
// already exists. Returns the number of rows actually inserted.
func (s CommitStore) SaveAll(ctx context.Context, records []commit.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	models := make([]CommitRecordModel, len(records))
	for i, r := range records {
		models[i] = s.Mapper().ToModel(r)
	}

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "commit_sha"}},
		DoNothing: true,
	}).Create(&models)
	if result.Error != nil {
		return 0, fmt.Errorf("save commit records: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// SHAs returns the commit SHAs already stored for a project.
func (s CommitStore) SHAs(ctx context.Context, projectID int64) ([]string, error) {
	var shas []string
	result := s.DB(ctx).Model(&CommitRecordModel{}).
		Where("project_id = ?", projectID).
		Pluck("commit_sha", &shas)
	if result.Error != nil {
		return nil, fmt.Errorf("list commit shas: %w", result.Error)
	}
	return shas, nil
}

// Ensure CommitStore implements commit.Store.
var _ commit.Store = CommitStore{}
