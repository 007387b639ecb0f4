package ops

import (
	"context"
	"log/slog"

	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/filter"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/tags"
)

// ListEntriesInput contains parameters for the ListEntries operation.
type ListEntriesInput struct {
	Type          string    // default: "all"
	Search        string    // optional
	Lang          i18n.Lang // language used to match resolved tag labels
	IncludeHidden bool
	Limit         int // default: 20, max: 100
	Offset        int // default: 0
}

// ListEntriesOutput contains the result of the ListEntries operation.
type ListEntriesOutput struct {
	Items       []entry.Entry `json:"items"`
	Pagination  Pagination    `json:"pagination"`
	FailedTypes []string      `json:"failed_types,omitempty"`
}

// ListEntries aggregates every configured type, filters and paginates.
// A type whose listing fails is reported in FailedTypes, not as an error.
func ListEntries(ctx context.Context, env *Env, input ListEntriesInput) (*ListEntriesOutput, error) {
	matched, failed, err := selectEntries(ctx, env, input.Type, input.Search, input.Lang, input.IncludeHidden)
	if err != nil {
		return nil, err
	}

	items, page := paginate(matched, input.Limit, input.Offset, DefaultListLimit, MaxListLimit)
	return &ListEntriesOutput{
		Items:       items,
		Pagination:  page,
		FailedTypes: failed,
	}, nil
}

func selectEntries(ctx context.Context, env *Env, typ, search string, lang i18n.Lang, includeHidden bool) ([]entry.Entry, []string, error) {
	if typ == "" {
		typ = filter.AllTypes
	}
	if typ != filter.AllTypes {
		if _, err := checkType(env, typ); err != nil {
			return nil, nil, err
		}
	}
	if lang == "" {
		lang = i18n.FR
	}

	res := env.Loader.LoadAll(ctx)
	var failed []string
	for _, t := range res.FailedTypes(env.Loader.Types()) {
		failed = append(failed, string(t))
	}

	viewer := filter.Viewer{Admin: includeHidden, ShowHidden: includeHidden}
	matched := env.engine().Apply(res.Entries, filter.Criteria{
		Type:   typ,
		Search: search,
		Lang:   lang,
		Viewer: viewer,
	}, knownDefinitions(ctx, env))
	return matched, failed, nil
}

// knownDefinitions lists stored tag definitions for resolution. A failure
// degrades to the cache and built-in tiers.
func knownDefinitions(ctx context.Context, env *Env) tags.Known {
	defs, err := env.Backend.ListTagDefinitions(ctx)
	if err != nil {
		env.Log().Warn("tag definition listing failed", slog.String("error", err.Error()))
		return nil
	}
	env.Resolver.Preload(defs)
	return tags.Index(defs)
}
