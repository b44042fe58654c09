package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/neuronhq/neuron/domain/store"
	"gorm.io/gorm"
)

// ErrNotFound indicates the requested entity was not found.
var ErrNotFound = errors.New("entity not found")

// EntityMapper converts between a domain type and its database model.
type EntityMapper[D any, E any] interface {
	ToDomain(entity E) D
	ToModel(domain D) E
}

// Repository implements the store.Option query surface for a single
// domain/model pair. Stores embed it and add their type-specific writes on
// top via DB.
type Repository[D any, E any] struct {
	db     Database
	mapper EntityMapper[D, E]
	label  string
}

// NewRepository creates a Repository. The label names the entity in error
// messages.
func NewRepository[D any, E any](db Database, mapper EntityMapper[D, E], label string) Repository[D, E] {
	return Repository[D, E]{db: db, mapper: mapper, label: label}
}

// Find retrieves all entities matching the given options, mapped to domain
// values.
func (r Repository[D, E]) Find(ctx context.Context, options ...store.Option) ([]D, error) {
	var entities []E
	if result := ApplyOptions(r.db.Session(ctx).Model(new(E)), options...).Find(&entities); result.Error != nil {
		return nil, fmt.Errorf("find %s: %w", r.label, result.Error)
	}

	domains := make([]D, len(entities))
	for i, entity := range entities {
		domains[i] = r.mapper.ToDomain(entity)
	}
	return domains, nil
}

// FindOne retrieves a single entity matching the given options. A miss
// returns ErrNotFound.
func (r Repository[D, E]) FindOne(ctx context.Context, options ...store.Option) (D, error) {
	var zero D
	var entity E
	if result := ApplyOptions(r.db.Session(ctx), options...).First(&entity); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, r.label)
		}
		return zero, fmt.Errorf("find one %s: %w", r.label, result.Error)
	}
	return r.mapper.ToDomain(entity), nil
}

// DeleteBy removes all entities matching the given options.
func (r Repository[D, E]) DeleteBy(ctx context.Context, options ...store.Option) error {
	if result := ApplyOptions(r.db.Session(ctx), options...).Delete(new(E)); result.Error != nil {
		return fmt.Errorf("delete %s: %w", r.label, result.Error)
	}
	return nil
}

// DB returns a GORM session for writes the option surface does not cover
// (upserts, batch inserts).
func (r Repository[D, E]) DB(ctx context.Context) *gorm.DB {
	return r.db.Session(ctx)
}

// Mapper returns the entity mapper so stores can convert explicitly.
func (r Repository[D, E]) Mapper() EntityMapper[D, E] {
	return r.mapper
}
