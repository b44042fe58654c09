package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/domain/store"
	"github.com/neuronhq/neuron/internal/database"
)

// unitConflictTarget is the natural key of a source unit. Re-indexing the
// same file replaces its content in place instead of accumulating rows.
var unitConflictTarget = []clause.Column{{Name: "project_id"}, {Name: "file_path"}}

// unitUpdateColumns are the columns rewritten on upsert. The id and
// created_at of the original row survive.
var unitUpdateColumns = clause.AssignmentColumns([]string{"content", "summary", "embedding", "updated_at"})

// NewUnitStore creates the source.UnitStore for the database backend. The
// embedding column differs between drivers, so each backend gets its own
// model and store.
func NewUnitStore(db database.Database) source.UnitStore {
	if db.IsPostgres() {
		return NewPgUnitStore(db)
	}
	return NewSQLiteUnitStore(db)
}

// PgUnitStore implements source.UnitStore for PostgreSQL with pgvector
// embeddings.
type PgUnitStore struct {
	database.Repository[source.Unit, PgUnitModel]
}

// NewPgUnitStore creates a new PgUnitStore.
func NewPgUnitStore(db database.Database) PgUnitStore {
	return PgUnitStore{
		Repository: database.NewRepository[source.Unit, PgUnitModel](db, pgUnitMapper{}, "source unit"),
	}
}

// Upsert creates or replaces a unit keyed on (project_id, file_path).
func (s PgUnitStore) Upsert(ctx context.Context, unit source.Unit) (source.Unit, error) {
	model := s.Mapper().ToModel(unit)
	model.UpdatedAt = time.Now()

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   unitConflictTarget,
		DoUpdates: unitUpdateColumns,
	}).Create(&model)
	if result.Error != nil {
		return source.Unit{}, fmt.Errorf("upsert source unit: %w", result.Error)
	}

	// On conflict the original row keeps its id, so read the canonical row
	// back rather than trusting the inserted model.
	return s.FindOne(ctx, store.WithProjectID(unit.ProjectID()), store.WithPath(unit.Path()))
}

// Paths returns the distinct file paths stored for a project.
func (s PgUnitStore) Paths(ctx context.Context, projectID int64) ([]string, error) {
	return unitPaths(s.DB(ctx).Model(&PgUnitModel{}), projectID)
}

// SQLiteUnitStore implements source.UnitStore for SQLite with JSON
// embeddings.
type SQLiteUnitStore struct {
	database.Repository[source.Unit, SQLiteUnitModel]
}

// NewSQLiteUnitStore creates a new SQLiteUnitStore.
func NewSQLiteUnitStore(db database.Database) SQLiteUnitStore {
	return SQLiteUnitStore{
		Repository: database.NewRepository[source.Unit, SQLiteUnitModel](db, sqliteUnitMapper{}, "source unit"),
	}
}

// Upsert creates or replaces a unit keyed on (project_id, file_path).
func (s SQLiteUnitStore) Upsert(ctx context.Context, unit source.Unit) (source.Unit, error) {
	model := s.Mapper().ToModel(unit)
	model.UpdatedAt = time.Now()

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   unitConflictTarget,
		DoUpdates: unitUpdateColumns,
	}).Create(&model)
	if result.Error != nil {
		return source.Unit{}, fmt.Errorf("upsert source unit: %w", result.Error)
	}

	return s.FindOne(ctx, store.WithProjectID(unit.ProjectID()), store.WithPath(unit.Path()))
}

// Paths returns the distinct file paths stored for a project.
func (s SQLiteUnitStore) Paths(ctx context.Context, projectID int64) ([]string, error) {
	return unitPaths(s.DB(ctx).Model(&SQLiteUnitModel{}), projectID)
}

func unitPaths(db *gorm.DB, projectID int64) ([]string, error) {
	var paths []string
	result := db.Where("project_id = ?", projectID).Pluck("file_path", &paths)
	if result.Error != nil {
		return nil, fmt.Errorf("list source unit paths: %w", result.Error)
	}
	return paths, nil
}

// Ensure both stores implement source.UnitStore.
var (
	_ source.UnitStore = PgUnitStore{}
	_ source.UnitStore = SQLiteUnitStore{}
)
