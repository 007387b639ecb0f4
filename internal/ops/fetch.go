package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
)

// FindEntryInput contains parameters for the FindEntry operation.
type FindEntryInput struct {
	ID   string // required
	Type string // optional; narrows the lookup to one listing
}

// FindEntry locates an entry by id. The store has no point lookup, so this
// lists the entry's type, or every configured type when Type is empty.
func FindEntry(ctx context.Context, env *Env, input FindEntryInput) (*EntryOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	types := env.Loader.Types()
	if input.Type != "" {
		typ, err := checkType(env, input.Type)
		if err != nil {
			return nil, err
		}
		types = []entry.Type{typ}
	}

	fields := env.Loader.Fields()
	for _, typ := range types {
		records, err := env.Backend.ListEntities(ctx, string(typ))
		if err != nil {
			return nil, storeErr("list entries", err)
		}
		for _, rec := range records {
			if recID, _ := rec.String("id"); recID != id {
				continue
			}
			e, err := entry.FromRecord(typ, rec, fields)
			if err != nil {
				return nil, errors.NewInternal(err)
			}
			return &EntryOutput{Entry: e}, nil
		}
	}
	return nil, errors.NewNotFound("entry", id)
}
