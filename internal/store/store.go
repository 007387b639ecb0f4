// Package store defines the persistence contract the rest of tome depends on.
package store

import (
	"context"

	"github.com/hpungsan/tome/internal/tags"
)

// Backend is the external collaborator that owns entries and tag definitions.
//
// Entry operations exchange raw Records; callers normalize them. Tag
// operations exchange typed definitions. GetTagDefinitionByCode returns
// (nil, nil) when the code is unknown.
type Backend interface {
	ListEntities(ctx context.Context, typ string) ([]Record, error)
	CreateEntity(ctx context.Context, typ string, fields Record) (Record, error)
	UpdateEntity(ctx context.Context, id, typ string, fields Record) (Record, error)
	DeleteEntity(ctx context.Context, id, typ string) error

	ListTagDefinitions(ctx context.Context) ([]tags.Definition, error)
	GetTagDefinitionByCode(ctx context.Context, code string) (*tags.Definition, error)
	CreateTagDefinition(ctx context.Context, def tags.Definition) (tags.Definition, error)
	UpdateTagDefinition(ctx context.Context, id string, def tags.Definition) (tags.Definition, error)
	DeleteTagDefinition(ctx context.Context, id string) error
}

var _ tags.Fetcher = Backend(nil)
