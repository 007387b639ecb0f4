package browse

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/filter"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/paging"
	"github.com/hpungsan/tome/internal/tags"
)

// TagView is the tag page counterpart of View. The viewer flags come from
// the owning View on each call.
type TagView struct {
	mu       sync.Mutex
	env      *ops.Env
	loaded   bool
	gen      uint64
	defs     []tags.Definition
	search   string
	viewer   filter.Viewer
	filtered []tags.Definition
	pager    *paging.Pager[tags.Definition]
	sentinel paging.Sentinel
	loadErr  error
}

// TagSnapshot is a read-only copy of the tag page state.
type TagSnapshot struct {
	Visible []tags.Definition
	HasMore bool
	Matched int
	Total   int
	Search  string
	LoadErr error
}

func definitionKey(d tags.Definition) string { return d.ID }

// NewTagView returns an unloaded tag view.
func NewTagView(env *ops.Env, pageSize int) *TagView {
	tv := &TagView{env: env, pager: paging.New(pageSize, definitionKey)}
	tv.pager.Attach(&tv.sentinel)
	return tv
}

// Load refreshes the definitions on first use and after any mutation.
func (tv *TagView) Load(ctx context.Context, viewer filter.Viewer) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.viewer = viewer
	if !tv.loaded || tv.gen != tv.env.Generation() {
		tv.refresh(ctx)
		return
	}
	tv.rederive()
}

// Refresh reloads definitions from the store. On failure the previous
// definitions stay and the error is reported in the snapshot.
func (tv *TagView) Refresh(ctx context.Context) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.refresh(ctx)
}

func (tv *TagView) refresh(ctx context.Context) {
	gen := tv.env.Generation()
	defs, err := tv.env.Backend.ListTagDefinitions(ctx)
	tv.loadErr = err
	if err == nil {
		tv.defs = defs
		tv.env.Resolver.Preload(defs)
		tv.loaded = true
		tv.gen = gen
	}
	tv.rederive()
}

func (tv *TagView) rederive() {
	tv.filtered = filter.FilterDefinitions(tv.defs, tv.search, tv.viewer)
	tv.pager.Reset(tv.filtered)
}

// SetSearch filters definitions by code, names or category.
func (tv *TagView) SetSearch(q string) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	if tv.search == q {
		return
	}
	tv.search = q
	tv.rederive()
}

// NearEnd reveals the next page.
func (tv *TagView) NearEnd() {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	tv.sentinel.Fire()
}

// Snapshot copies the current state.
func (tv *TagView) Snapshot() TagSnapshot {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	return TagSnapshot{
		Visible: slices.Clone(tv.pager.Visible()),
		HasMore: tv.pager.HasMore(),
		Matched: len(tv.filtered),
		Total:   len(tv.defs),
		Search:  tv.search,
		LoadErr: tv.loadErr,
	}
}

// Definitions returns every loaded definition.
func (tv *TagView) Definitions() []tags.Definition {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	return slices.Clone(tv.defs)
}

// Create stores a definition. viewer must be an admin.
func (tv *TagView) Create(ctx context.Context, viewer filter.Viewer, input ops.TagInput) (tags.Definition, error) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	if !viewer.Admin {
		return tags.Definition{}, errors.NewUnauthorized()
	}
	out, err := ops.CreateTag(ctx, tv.env, input)
	if err != nil {
		return tags.Definition{}, err
	}
	tv.replace(out.Tag)
	return out.Tag, nil
}

// Update stores changes to a definition.
func (tv *TagView) Update(ctx context.Context, viewer filter.Viewer, input ops.UpdateTagInput) (tags.Definition, error) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	if !viewer.Admin {
		return tags.Definition{}, errors.NewUnauthorized()
	}
	out, err := ops.UpdateTag(ctx, tv.env, input)
	if err != nil {
		return tags.Definition{}, err
	}
	tv.replace(out.Tag)
	return out.Tag, nil
}

// Delete removes a definition.
func (tv *TagView) Delete(ctx context.Context, viewer filter.Viewer, id string) error {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	if !viewer.Admin {
		return errors.NewUnauthorized()
	}
	if _, err := ops.DeleteTag(ctx, tv.env, id); err != nil {
		return err
	}
	tv.defs = slices.DeleteFunc(slices.Clone(tv.defs), func(d tags.Definition) bool { return d.ID == id })
	tv.rederive()
	return nil
}

// replace inserts or overwrites d, keeping definitions ordered by code.
func (tv *TagView) replace(d tags.Definition) {
	defs := slices.DeleteFunc(slices.Clone(tv.defs), func(x tags.Definition) bool { return x.ID == d.ID })
	defs = append(defs, d)
	slices.SortFunc(defs, func(a, b tags.Definition) int { return strings.Compare(a.Code, b.Code) })
	tv.defs = defs
	tv.rederive()
}
