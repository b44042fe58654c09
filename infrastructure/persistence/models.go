package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neuronhq/neuron/internal/database"
)

// ProjectModel represents a tracked repository project in the database.
type ProjectModel struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string     `gorm:"column:name;index;size:255"`
	RepoURL     string     `gorm:"column:repo_url;index;size:1024"`
	GithubToken string     `gorm:"column:github_token;size:255"`
	ArchivedAt  *time.Time `gorm:"column:archived_at;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (ProjectModel) TableName() string {
	return "projects"
}

// CommitRecordModel represents a summarized commit in the database. The
// composite unique index makes re-ingestion of the same history a no-op.
type CommitRecordModel struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID       int64     `gorm:"column:project_id;index;uniqueIndex:idx_commit_records_project_sha"`
	CommitSHA       string    `gorm:"column:commit_sha;size:64;uniqueIndex:idx_commit_records_project_sha"`
	Message         string    `gorm:"column:message;type:text"`
	AuthorName      string    `gorm:"column:author_name;size:255"`
	AuthorAvatarURL string    `gorm:"column:author_avatar_url;size:1024"`
	CommittedAt     time.Time `gorm:"column:committed_at;index"`
	Summary         string    `gorm:"column:summary;type:text"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (CommitRecordModel) TableName() string {
	return "commit_records"
}

// QuestionModel represents a saved question and its answer in the database.
// References are stored as a JSON document; they are only ever read back
// whole, never queried.
type QuestionModel struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID  int64           `gorm:"column:project_id;index"`
	Question   string          `gorm:"column:question;type:text"`
	Answer     string          `gorm:"column:answer;type:text"`
	References json.RawMessage `gorm:"column:references_json;type:text"`
	CreatedAt  time.Time       `gorm:"column:created_at;index"`
}

// TableName returns the table name.
func (QuestionModel) TableName() string {
	return "questions"
}

// fileReferenceJSON is the wire shape of a file reference inside the
// references_json column.
type fileReferenceJSON struct {
	Path       string  `json:"path"`
	Summary    string  `json:"summary"`
	Similarity float64 `json:"similarity"`
}

// PgUnitModel represents an indexed source unit in PostgreSQL. The embedding
// column uses the pgvector extension so similarity search runs in the
// database.
type PgUnitModel struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID int64             `gorm:"column:project_id;index;uniqueIndex:idx_source_units_project_path"`
	FilePath  string            `gorm:"column:file_path;size:1024;uniqueIndex:idx_source_units_project_path"`
	Content   string            `gorm:"column:content;type:text"`
	Summary   string            `gorm:"column:summary;type:text"`
	Embedding database.PgVector `gorm:"column:embedding;type:vector"`
	CreatedAt time.Time         `gorm:"column:created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (PgUnitModel) TableName() string {
	return "source_units"
}

// Float64Slice is a custom type for JSON serialization of []float64 in SQLite.
type Float64Slice []float64

// Scan implements sql.Scanner for reading JSON from SQLite.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer for writing JSON to SQLite.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// SQLiteUnitModel represents an indexed source unit in SQLite. The embedding
// is stored as JSON; similarity search happens in memory.
type SQLiteUnitModel struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID int64        `gorm:"column:project_id;index;uniqueIndex:idx_source_units_project_path"`
	FilePath  string       `gorm:"column:file_path;size:1024;uniqueIndex:idx_source_units_project_path"`
	Content   string       `gorm:"column:content;type:text"`
	Summary   string       `gorm:"column:summary;type:text"`
	Embedding Float64Slice `gorm:"column:embedding;type:json"`
	CreatedAt time.Time    `gorm:"column:created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (SQLiteUnitModel) TableName() string {
	return "source_units"
}
