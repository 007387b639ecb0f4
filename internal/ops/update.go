package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
)

// UpdateEntryInput contains parameters for the UpdateEntry operation.
type UpdateEntryInput struct {
	ID   string // required
	Type string // optional; must match the stored type when set
	EntryInput
}

// UpdateEntry merges input over the stored entry. The type never changes.
func UpdateEntry(ctx context.Context, env *Env, input UpdateEntryInput) (*EntryOutput, error) {
	out, err := updateEntry(ctx, env, input)
	return out, env.observe("update_entry", err)
}

func updateEntry(ctx context.Context, env *Env, input UpdateEntryInput) (*EntryOutput, error) {
	found, err := FindEntry(ctx, env, FindEntryInput{ID: input.ID, Type: input.Type})
	if input.Type != "" && errors.Is(err, errors.ErrNotFound) {
		// Stored under another type: surface that as TYPE_IMMUTABLE.
		found, err = FindEntry(ctx, env, FindEntryInput{ID: input.ID})
	}
	if err != nil {
		return nil, err
	}
	e := found.Entry

	if t := strings.TrimSpace(input.Type); t != "" && entry.Type(t) != e.Type {
		return nil, errors.NewTypeImmutable(string(e.Type), t)
	}
	if err := applyInput(&e, input.EntryInput); err != nil {
		return nil, err
	}

	fields := env.Loader.Fields()
	rec, err := env.Backend.UpdateEntity(ctx, e.ID, string(e.Type), entry.ToRecord(e, fields))
	if err != nil {
		return nil, storeErr("update entry", err)
	}
	updated, err := entry.FromRecord(e.Type, rec, fields)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &EntryOutput{Entry: updated}, nil
}
