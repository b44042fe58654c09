// Package persistence provides database storage implementations.
package persistence

import (
	"fmt"

	"github.com/neuronhq/neuron/internal/database"
)

// pgCreateVectorExtension enables pgvector before the source_units table is
// created; the embedding column type does not exist without it.
const pgCreateVectorExtension = `CREATE EXTENSION IF NOT EXISTS vector`

// pgCreateEmbeddingIndex builds an approximate cosine index over embeddings.
// Creation can fail on older pgvector versions; search still works without
// it, just slower.
const pgCreateEmbeddingIndex = `
CREATE INDEX IF NOT EXISTS idx_source_units_embedding
ON source_units
USING ivfflat (embedding vector_cosine_ops)
WITH (lists = 100)`

// AutoMigrate runs GORM auto migration for all models. The source_units
// table has a backend-specific embedding column, so the model set depends on
// the driver.
func AutoMigrate(db database.Database) error {
	models := []any{
		&ProjectModel{},
		&CommitRecordModel{},
		&QuestionModel{},
	}

	if db.IsPostgres() {
		if err := db.GORM().Exec(pgCreateVectorExtension).Error; err != nil {
			return fmt.Errorf("create vector extension: %w", err)
		}
		models = append(models, &PgUnitModel{})
	} else {
		models = append(models, &SQLiteUnitModel{})
	}

	if err := db.GORM().AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.IsPostgres() {
		if err := db.GORM().Exec(pgCreateEmbeddingIndex).Error; err != nil {
			return fmt.Errorf("create embedding index: %w", err)
		}
	}
	return nil
}
