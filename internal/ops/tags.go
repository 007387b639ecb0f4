package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/filter"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/tags"
)

// TagInput holds tag definition fields. Nil fields are left unchanged on
// update. Code and both names are required on create.
type TagInput struct {
	Code     *string
	NameEN   *string
	NameFR   *string
	Category *string // blank clears
	Hidden   *bool
}

// TagOutput contains one tag definition.
type TagOutput struct {
	Tag tags.Definition `json:"tag"`
}

// CreateTag stores a new tag definition.
func CreateTag(ctx context.Context, env *Env, input TagInput) (*TagOutput, error) {
	out, err := createTag(ctx, env, input)
	return out, env.observe("create_tag", err)
}

func createTag(ctx context.Context, env *Env, input TagInput) (*TagOutput, error) {
	required := []struct {
		field string
		value *string
	}{
		{"code", input.Code},
		{"name_en", input.NameEN},
		{"name_fr", input.NameFR},
	}
	for _, r := range required {
		if r.value == nil || strings.TrimSpace(*r.value) == "" {
			return nil, errors.NewInvalidRequest(r.field + " is required")
		}
	}

	var def tags.Definition
	if err := applyTagInput(&def, input); err != nil {
		return nil, err
	}
	created, err := env.Backend.CreateTagDefinition(ctx, def)
	if err != nil {
		return nil, storeErr("create tag", err)
	}
	env.Resolver.Invalidate()
	return &TagOutput{Tag: created}, nil
}

// UpdateTagInput contains parameters for the UpdateTag operation.
type UpdateTagInput struct {
	ID string // required
	TagInput
}

// UpdateTag merges input over the stored definition.
func UpdateTag(ctx context.Context, env *Env, input UpdateTagInput) (*TagOutput, error) {
	out, err := updateTag(ctx, env, input)
	return out, env.observe("update_tag", err)
}

func updateTag(ctx context.Context, env *Env, input UpdateTagInput) (*TagOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	defs, err := env.Backend.ListTagDefinitions(ctx)
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	var def *tags.Definition
	for i := range defs {
		if defs[i].ID == id {
			def = &defs[i]
			break
		}
	}
	if def == nil {
		return nil, errors.NewNotFound("tag definition", id)
	}

	if err := applyTagInput(def, input.TagInput); err != nil {
		return nil, err
	}
	updated, err := env.Backend.UpdateTagDefinition(ctx, id, *def)
	if err != nil {
		return nil, storeErr("update tag", err)
	}
	env.Resolver.Invalidate()
	return &TagOutput{Tag: updated}, nil
}

// DeleteTag permanently removes a tag definition. Entries keep the code;
// it resolves through the remaining tiers.
func DeleteTag(ctx context.Context, env *Env, id string) (*DeleteOutput, error) {
	out, err := deleteTag(ctx, env, id)
	return out, env.observe("delete_tag", err)
}

func deleteTag(ctx context.Context, env *Env, id string) (*DeleteOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := env.Backend.DeleteTagDefinition(ctx, id); err != nil {
		return nil, storeErr("delete tag", err)
	}
	env.Resolver.Invalidate()
	return &DeleteOutput{Deleted: true, ID: id}, nil
}

func applyTagInput(def *tags.Definition, in TagInput) error {
	set := func(dst *string, v *string, field string) error {
		if v == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			return errors.NewInvalidRequest(field + " must not be empty")
		}
		*dst = trimmed
		return nil
	}
	if err := set(&def.Code, in.Code, "code"); err != nil {
		return err
	}
	if err := set(&def.NameEN, in.NameEN, "name_en"); err != nil {
		return err
	}
	if err := set(&def.NameFR, in.NameFR, "name_fr"); err != nil {
		return err
	}
	if in.Category != nil {
		def.Category = cleanOptionalString(in.Category)
	}
	if in.Hidden != nil {
		hidden := *in.Hidden
		def.Hidden = &hidden
	}
	return nil
}

// ListTagsInput contains parameters for the ListTags operation.
type ListTagsInput struct {
	Search        string
	IncludeHidden bool
	Limit         int // default: 100, max: 500
	Offset        int
}

// ListTagsOutput contains the result of the ListTags operation.
type ListTagsOutput struct {
	Items      []tags.Definition `json:"items"`
	Pagination Pagination        `json:"pagination"`
}

// ListTags lists stored definitions ordered by code.
func ListTags(ctx context.Context, env *Env, input ListTagsInput) (*ListTagsOutput, error) {
	defs, err := env.Backend.ListTagDefinitions(ctx)
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	env.Resolver.Preload(defs)

	viewer := filter.Viewer{Admin: input.IncludeHidden, ShowHidden: input.IncludeHidden}
	matched := filter.FilterDefinitions(defs, input.Search, viewer)
	items, page := paginate(matched, input.Limit, input.Offset, DefaultTagLimit, MaxTagLimit)
	return &ListTagsOutput{Items: items, Pagination: page}, nil
}

// ResolveTagsInput contains parameters for the ResolveTags operation.
type ResolveTagsInput struct {
	Codes []string
	Lang  i18n.Lang
}

// ResolveTagsOutput maps each code to its display label.
type ResolveTagsOutput struct {
	Labels map[string]string `json:"labels"`
}

// ResolveTags resolves codes, fetching unknown definitions from the store.
func ResolveTags(ctx context.Context, env *Env, input ResolveTagsInput) (*ResolveTagsOutput, error) {
	codes := cleanTags(input.Codes)
	if len(codes) == 0 {
		return nil, errors.NewInvalidRequest("at least one code is required")
	}
	lang := input.Lang
	if lang == "" {
		lang = i18n.FR
	}
	return &ResolveTagsOutput{Labels: env.Resolver.ResolveAll(ctx, codes, lang)}, nil
}

// SuggestTagsInput contains parameters for the SuggestTags operation.
type SuggestTagsInput struct {
	Query    string
	Lang     i18n.Lang
	Selected []string
	Limit    int // default: tags.DefaultSuggestLimit
}

// SuggestTagsOutput lists autocomplete candidates.
type SuggestTagsOutput struct {
	Suggestions []tags.Suggestion `json:"suggestions"`
}

// SuggestTags proposes codes whose label or code contains the query.
func SuggestTags(ctx context.Context, env *Env, input SuggestTagsInput) (*SuggestTagsOutput, error) {
	lang := input.Lang
	if lang == "" {
		lang = i18n.FR
	}
	known := knownDefinitions(ctx, env)
	out := env.Resolver.Suggest(input.Query, lang, known, input.Selected, input.Limit)
	if out == nil {
		out = []tags.Suggestion{}
	}
	return &SuggestTagsOutput{Suggestions: out}, nil
}
