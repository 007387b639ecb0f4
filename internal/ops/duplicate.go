package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
)

// CopySuffix is appended to a duplicate's name unless one is given.
const CopySuffix = " (copy)"

// DuplicateEntryInput contains parameters for the DuplicateEntry operation.
type DuplicateEntryInput struct {
	ID   string  // required
	Type string  // optional
	Name *string // optional; default: source name + CopySuffix
}

// DuplicateEntry stores a copy of an entry under a new identity.
func DuplicateEntry(ctx context.Context, env *Env, input DuplicateEntryInput) (*EntryOutput, error) {
	out, err := duplicateEntry(ctx, env, input)
	return out, env.observe("duplicate_entry", err)
}

func duplicateEntry(ctx context.Context, env *Env, input DuplicateEntryInput) (*EntryOutput, error) {
	found, err := FindEntry(ctx, env, FindEntryInput{ID: input.ID, Type: input.Type})
	if err != nil {
		return nil, err
	}

	dup := entry.Duplicate(found.Entry)
	dup.Name = found.Entry.Name + CopySuffix
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.NewInvalidRequest("name must not be empty")
		}
		dup.Name = name
	}
	return create(ctx, env, dup)
}
