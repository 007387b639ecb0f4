package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
)

// EntryInput holds entry fields. Nil fields are left unchanged on update
// and empty on create. A blank string clears an optional field.
type EntryInput struct {
	Name            *string
	Description     *string
	Tags            []string // nil: unchanged
	Hidden          *bool
	MarkdownContent *string
	Requirement     *string // trait
	Rules           *string // object, spell, class, trap, monster
	SpellLevel      *string // spell: "minor", "major" or "" to clear
	BaseHP          *int    // ancestry
	BaseAC          *int    // ancestry
	BaseTrait       *string // ancestry
}

// CreateEntryInput contains parameters for the CreateEntry operation.
type CreateEntryInput struct {
	Type string // required, must be configured
	EntryInput
}

// EntryOutput contains one entry.
type EntryOutput struct {
	Entry entry.Entry `json:"entry"`
}

// CreateEntry validates input and stores a new entry.
func CreateEntry(ctx context.Context, env *Env, input CreateEntryInput) (*EntryOutput, error) {
	out, err := createEntry(ctx, env, input)
	return out, env.observe("create_entry", err)
}

func createEntry(ctx context.Context, env *Env, input CreateEntryInput) (*EntryOutput, error) {
	typ, err := checkType(env, input.Type)
	if err != nil {
		return nil, err
	}
	if input.Name == nil {
		return nil, errors.NewInvalidRequest("name is required")
	}

	e := entry.Entry{Type: typ, Tags: []string{}, Details: entry.DetailsFor(typ)}
	if err := applyInput(&e, input.EntryInput); err != nil {
		return nil, err
	}

	return create(ctx, env, e)
}

func create(ctx context.Context, env *Env, e entry.Entry) (*EntryOutput, error) {
	fields := env.Loader.Fields()
	rec, err := env.Backend.CreateEntity(ctx, string(e.Type), entry.ToRecord(e, fields))
	if err != nil {
		return nil, storeErr("create entry", err)
	}
	created, err := entry.FromRecord(e.Type, rec, fields)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &EntryOutput{Entry: created}, nil
}

func checkType(env *Env, raw string) (entry.Type, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.NewInvalidRequest("type is required")
	}
	typ := entry.Type(raw)
	if !env.Loader.HasType(typ) {
		return "", errors.NewUnknownType(raw)
	}
	return typ, nil
}

// applyInput writes the non-nil fields of in onto e. These are UI-level
// checks, not a security boundary.
func applyInput(e *entry.Entry, in EntryInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return errors.NewInvalidRequest("name must not be empty")
		}
		e.Name = name
	}
	if in.Description != nil {
		e.Description = cleanOptionalString(in.Description)
	}
	if in.Tags != nil {
		e.Tags = cleanTags(in.Tags)
	}
	if in.Hidden != nil {
		e.Hidden = entry.Ptr(*in.Hidden)
	}
	if in.MarkdownContent != nil {
		e.MarkdownContent = cleanOptionalString(in.MarkdownContent)
	}

	switch d := e.Details.(type) {
	case entry.TraitDetails:
		if in.Requirement != nil {
			d.Requirement = cleanOptionalString(in.Requirement)
		}
		e.Details = d
	case entry.ObjectDetails:
		if in.Rules != nil {
			d.Rules = cleanOptionalString(in.Rules)
		}
		e.Details = d
	case entry.SpellDetails:
		if in.SpellLevel != nil {
			raw := strings.TrimSpace(*in.SpellLevel)
			level, ok := entry.ParseSpellLevel(raw)
			if raw != "" && !ok {
				return errors.NewInvalidRequest(fmt.Sprintf("spell_level must be %q or %q", entry.SpellMinor, entry.SpellMajor))
			}
			d.Level = level
		}
		if in.Rules != nil {
			d.Rules = cleanOptionalString(in.Rules)
		}
		e.Details = d
	case entry.AncestryDetails:
		if in.BaseHP != nil {
			if *in.BaseHP < 0 {
				return errors.NewInvalidRequest("base_hp must not be negative")
			}
			d.BaseHP = *in.BaseHP
		}
		if in.BaseAC != nil {
			if *in.BaseAC < 0 {
				return errors.NewInvalidRequest("base_ac must not be negative")
			}
			d.BaseAC = *in.BaseAC
		}
		if in.BaseTrait != nil {
			d.BaseTrait = cleanOptionalString(in.BaseTrait)
		}
		e.Details = d
	case entry.PlainDetails:
		if in.Rules != nil {
			d.Rules = cleanOptionalString(in.Rules)
		}
		e.Details = d
	}
	return nil
}
