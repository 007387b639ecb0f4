package store

import (
	"context"
	"time"

	"github.com/hpungsan/tome/internal/tags"
)

// timeoutBackend bounds every call to the wrapped Backend.
type timeoutBackend struct {
	next    Backend
	timeout time.Duration
}

// WithTimeout returns a Backend whose calls carry a deadline of d.
// A non-positive d returns next unchanged.
func WithTimeout(next Backend, d time.Duration) Backend {
	if d <= 0 {
		return next
	}
	return &timeoutBackend{next: next, timeout: d}
}

func (b *timeoutBackend) ListEntities(ctx context.Context, typ string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.ListEntities(ctx, typ)
}

func (b *timeoutBackend) CreateEntity(ctx context.Context, typ string, fields Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.CreateEntity(ctx, typ, fields)
}

func (b *timeoutBackend) UpdateEntity(ctx context.Context, id, typ string, fields Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.UpdateEntity(ctx, id, typ, fields)
}

func (b *timeoutBackend) DeleteEntity(ctx context.Context, id, typ string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.DeleteEntity(ctx, id, typ)
}

func (b *timeoutBackend) ListTagDefinitions(ctx context.Context) ([]tags.Definition, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.ListTagDefinitions(ctx)
}

func (b *timeoutBackend) GetTagDefinitionByCode(ctx context.Context, code string) (*tags.Definition, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.GetTagDefinitionByCode(ctx, code)
}

func (b *timeoutBackend) CreateTagDefinition(ctx context.Context, def tags.Definition) (tags.Definition, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.CreateTagDefinition(ctx, def)
}

func (b *timeoutBackend) UpdateTagDefinition(ctx context.Context, id string, def tags.Definition) (tags.Definition, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.UpdateTagDefinition(ctx, id, def)
}

func (b *timeoutBackend) DeleteTagDefinition(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.DeleteTagDefinition(ctx, id)
}
