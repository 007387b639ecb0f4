package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/tome/internal/errors"
)

// DeleteEntryInput contains parameters for the DeleteEntry operation.
type DeleteEntryInput struct {
	ID   string // required
	Type string // optional; looked up when empty
}

// DeleteOutput contains the result of a delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteEntry permanently removes an entry.
func DeleteEntry(ctx context.Context, env *Env, input DeleteEntryInput) (*DeleteOutput, error) {
	out, err := deleteEntry(ctx, env, input)
	return out, env.observe("delete_entry", err)
}

func deleteEntry(ctx context.Context, env *Env, input DeleteEntryInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	typ := strings.TrimSpace(input.Type)
	if typ == "" {
		found, err := FindEntry(ctx, env, FindEntryInput{ID: id})
		if err != nil {
			return nil, err
		}
		typ = string(found.Entry.Type)
	} else if _, err := checkType(env, typ); err != nil {
		return nil, err
	}

	if err := env.Backend.DeleteEntity(ctx, id, typ); err != nil {
		return nil, storeErr("delete entry", err)
	}
	return &DeleteOutput{Deleted: true, ID: id}, nil
}
