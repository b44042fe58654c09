package persistence

import (
	"encoding/json"

	"github.com/neuronhq/neuron/domain/commit"
	"github.com/neuronhq/neuron/domain/project"
	"github.com/neuronhq/neuron/domain/source"
	"github.com/neuronhq/neuron/internal/database"
)

// ProjectMapper maps between domain Project and persistence ProjectModel.
type ProjectMapper struct{}

// ToDomain converts a ProjectModel to a domain Project.
func (m ProjectMapper) ToDomain(e ProjectModel) project.Project {
	return project.ReconstructProject(
		e.ID,
		e.Name,
		e.RepoURL,
		e.GithubToken,
		e.CreatedAt,
		e.UpdatedAt,
		e.ArchivedAt,
	)
}

// ToModel converts a domain Project to a ProjectModel.
func (m ProjectMapper) ToModel(p project.Project) ProjectModel {
	return ProjectModel{
		ID:          p.ID(),
		Name:        p.Name(),
		RepoURL:     p.RepoURL(),
		GithubToken: p.GithubToken(),
		ArchivedAt:  p.ArchivedAt(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

// CommitRecordMapper maps between domain commit.Record and CommitRecordModel.
type CommitRecordMapper struct{}

// ToDomain converts a CommitRecordModel to a domain Record.
func (m CommitRecordMapper) ToDomain(e CommitRecordModel) commit.Record {
	return commit.ReconstructRecord(
		e.ID,
		e.ProjectID,
		e.CommitSHA,
		e.Message,
		e.AuthorName,
		e.AuthorAvatarURL,
		e.CommittedAt,
		e.Summary,
		e.CreatedAt,
	)
}

// ToModel converts a domain Record to a CommitRecordModel.
func (m CommitRecordMapper) ToModel(r commit.Record) CommitRecordModel {
	return CommitRecordModel{
		ID:              r.ID(),
		ProjectID:       r.ProjectID(),
		CommitSHA:       r.SHA(),
		Message:         r.Message(),
		AuthorName:      r.AuthorName(),
		AuthorAvatarURL: r.AuthorAvatarURL(),
		CommittedAt:     r.CommittedAt(),
		Summary:         r.Summary(),
		CreatedAt:       r.CreatedAt(),
	}
}

// QuestionMapper maps between domain Question and QuestionModel.
type QuestionMapper struct{}

// ToDomain converts a QuestionModel to a domain Question. A references
// column that fails to parse yields a question without references rather
// than an error; the answer text is the record of value.
func (m QuestionMapper) ToDomain(e QuestionModel) project.Question {
	var raw []fileReferenceJSON
	if len(e.References) > 0 {
		_ = json.Unmarshal(e.References, &raw)
	}

	refs := make([]project.FileReference, len(raw))
	for i, r := range raw {
		refs[i] = project.NewFileReference(r.Path, r.Summary, r.Similarity)
	}

	return project.ReconstructQuestion(
		e.ID,
		e.ProjectID,
		e.Question,
		e.Answer,
		refs,
		e.CreatedAt,
	)
}

// ToModel converts a domain Question to a QuestionModel.
func (m QuestionMapper) ToModel(q project.Question) QuestionModel {
	refs := q.References()
	raw := make([]fileReferenceJSON, len(refs))
	for i, r := range refs {
		raw[i] = fileReferenceJSON{
			Path:       r.Path(),
			Summary:    r.Summary(),
			Similarity: r.Similarity(),
		}
	}
	data, _ := json.Marshal(raw)

	return QuestionModel{
		ID:         q.ID(),
		ProjectID:  q.ProjectID(),
		Question:   q.Text(),
		Answer:     q.Answer(),
		References: data,
		CreatedAt:  q.CreatedAt(),
	}
}

// pgUnitMapper maps between source.Unit and PgUnitModel.
type pgUnitMapper struct{}

func (pgUnitMapper) ToDomain(e PgUnitModel) source.Unit {
	return source.ReconstructUnit(
		e.ID,
		e.ProjectID,
		e.FilePath,
		e.Content,
		e.Summary,
		e.Embedding.Floats(),
		e.CreatedAt,
		e.UpdatedAt,
	)
}

func (pgUnitMapper) ToModel(u source.Unit) PgUnitModel {
	return PgUnitModel{
		ID:        u.ID(),
		ProjectID: u.ProjectID(),
		FilePath:  u.Path(),
		Content:   u.Content(),
		Summary:   u.Summary(),
		Embedding: database.NewPgVector(u.Embedding()),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

// sqliteUnitMapper maps between source.Unit and SQLiteUnitModel.
type sqliteUnitMapper struct{}

func (sqliteUnitMapper) ToDomain(e SQLiteUnitModel) source.Unit {
	return source.ReconstructUnit(
		e.ID,
		e.ProjectID,
		e.FilePath,
		e.Content,
		e.Summary,
		[]float64(e.Embedding),
		e.CreatedAt,
		e.UpdatedAt,
	)
}

func (sqliteUnitMapper) ToModel(u source.Unit) SQLiteUnitModel {
	return SQLiteUnitModel{
		ID:        u.ID(),
		ProjectID: u.ProjectID(),
		FilePath:  u.Path(),
		Content:   u.Content(),
		Summary:   u.Summary(),
		Embedding: Float64Slice(u.Embedding()),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}
