// Package browse holds the per-viewer state behind the web UI: the loaded
// collection, the active criteria and the pager over the filtered result.
//
// A View only changes its collection after the store confirms a mutation,
// so a failed call leaves everything the viewer sees untouched. Mutations
// made elsewhere are picked up by the next Load.
package browse

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/hpungsan/tome/internal/catalog"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/filter"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/paging"
	"github.com/hpungsan/tome/internal/tags"
)

// View is one viewer's browsing state. Methods are safe for concurrent use.
type View struct {
	mu       sync.Mutex
	env      *ops.Env
	gate     *Gate
	engine   *filter.Engine
	loaded   bool
	gen      uint64
	all      []entry.Entry
	defs     []tags.Definition
	known    tags.Known
	failed   []entry.Type
	criteria filter.Criteria
	filtered []entry.Entry
	pager    *paging.Pager[entry.Entry]
	sentinel paging.Sentinel
}

// Snapshot is a read-only copy of what the viewer currently sees.
type Snapshot struct {
	Visible     []entry.Entry
	HasMore     bool
	Matched     int
	Total       int
	Counts      map[entry.Type]int
	Types       []entry.Type
	FailedTypes []entry.Type
	Criteria    filter.Criteria
	Admin       bool
	ShowHidden  bool
	Labels      map[string]string
}

// NewView returns an unloaded view showing every type in lang.
func NewView(env *ops.Env, gate *Gate, pageSize int, lang i18n.Lang) *View {
	v := &View{
		env:      env,
		gate:     gate,
		engine:   filter.NewEngine(env.Resolver, env.Loader.Fields()),
		criteria: filter.AllCriteria(lang, filter.Viewer{}),
		pager:    paging.New(pageSize, entry.Key),
	}
	v.pager.Attach(&v.sentinel)
	return v
}

// Load refreshes the view on first use and whenever a mutation from any
// session has landed since the last load.
func (v *View) Load(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded || v.gen != v.env.Generation() {
		v.refresh(ctx)
	}
}

// Refresh reloads entries and tag definitions from the store.
func (v *View) Refresh(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refresh(ctx)
}

func (v *View) refresh(ctx context.Context) {
	v.gen = v.env.Generation()
	res := v.env.Loader.LoadAll(ctx)
	v.all = res.Entries
	v.failed = res.FailedTypes(v.env.Loader.Types())

	defs, err := v.env.Backend.ListTagDefinitions(ctx)
	if err != nil {
		v.env.Log().Warn("tag definition listing failed", slog.String("error", err.Error()))
	} else {
		v.setDefinitions(defs)
	}
	v.loaded = true
	v.rederive()
}

func (v *View) setDefinitions(defs []tags.Definition) {
	v.defs = defs
	v.known = tags.Index(defs)
	v.env.Resolver.Preload(defs)
}

// rederive recomputes the filtered collection and resets the pager.
func (v *View) rederive() {
	v.filtered = v.engine.Apply(v.all, v.criteria, v.known)
	v.pager.Reset(v.filtered)
}

// SetType selects "all" or one configured type.
func (v *View) SetType(t string) error {
	if t == "" {
		t = filter.AllTypes
	}
	if t != filter.AllTypes && !v.env.Loader.HasType(entry.Type(t)) {
		return errors.NewUnknownType(t)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.criteria.Type == t {
		return nil
	}
	v.criteria.Type = t
	v.rederive()
	return nil
}

// SetSearch sets the text search term.
func (v *View) SetSearch(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.criteria.Search == q {
		return
	}
	v.criteria.Search = q
	v.rederive()
}

// SetLanguage switches the language used for tag labels and search.
func (v *View) SetLanguage(l i18n.Lang) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.criteria.Lang == l {
		return
	}
	v.criteria.Lang = l
	v.rederive()
}

// Language returns the active language.
func (v *View) Language() i18n.Lang {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.criteria.Lang
}

// SetShowHidden toggles hidden entries. Only admins may turn it on.
func (v *View) SetShowHidden(on bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if on && !v.criteria.Viewer.Admin {
		return errors.NewUnauthorized()
	}
	v.criteria.Viewer.ShowHidden = on
	v.rederive()
	return nil
}

// Login enables admin mode when password matches.
func (v *View) Login(password string) error {
	if err := v.gate.Check(password); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria.Viewer.Admin = true
	v.rederive()
	return nil
}

// Logout leaves admin mode and resets the show-hidden toggle.
func (v *View) Logout() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria.Viewer = filter.Viewer{}
	v.rederive()
}

// Viewer returns the current viewer flags.
func (v *View) Viewer() filter.Viewer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.criteria.Viewer
}

// NearEnd reports that the end of the list is in view. It reveals the
// next page through the pager's trigger.
func (v *View) NearEnd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sentinel.Fire()
}

// Snapshot copies the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	visible := slices.Clone(v.pager.Visible())
	labels := make(map[string]string)
	for _, e := range visible {
		for _, code := range e.Tags {
			if _, ok := labels[code]; !ok {
				labels[code] = v.env.Resolver.Resolve(code, v.criteria.Lang, v.known)
			}
		}
	}

	return Snapshot{
		Visible:     visible,
		HasMore:     v.pager.HasMore(),
		Matched:     len(v.filtered),
		Total:       len(v.all),
		Counts:      v.engine.CountByType(v.all, v.criteria.Viewer),
		Types:       v.env.Loader.Types(),
		FailedTypes: slices.Clone(v.failed),
		Criteria:    v.criteria,
		Admin:       v.criteria.Viewer.Admin,
		ShowHidden:  v.criteria.Viewer.ShowHidden,
		Labels:      labels,
	}
}

// Entry returns a loaded entry the viewer may see.
func (v *View) Entry(id string) (entry.Entry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.index(id)
	if i < 0 {
		return entry.Entry{}, false
	}
	e := v.all[i]
	// Admins open hidden entries directly; the toggle only affects listings.
	if e.IsHidden() && v.env.Loader.Fields().Has(entry.FieldHidden) && !v.criteria.Viewer.Admin {
		return entry.Entry{}, false
	}
	return e, true
}

// Labels resolves codes in the active language.
func (v *View) Labels(codes []string) map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]string, len(codes))
	for _, c := range codes {
		out[c] = v.env.Resolver.Resolve(c, v.criteria.Lang, v.known)
	}
	return out
}

// Filtered returns a copy of the full filtered collection.
func (v *View) Filtered() []entry.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.filtered)
}

func (v *View) index(id string) int {
	return slices.IndexFunc(v.all, func(e entry.Entry) bool { return e.ID == id })
}

func (v *View) requireAdmin() error {
	if !v.criteria.Viewer.Admin {
		return errors.NewUnauthorized()
	}
	return nil
}

// Create stores a new entry and adds it to the collection.
func (v *View) Create(ctx context.Context, input ops.CreateEntryInput) (entry.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireAdmin(); err != nil {
		return entry.Entry{}, err
	}
	out, err := ops.CreateEntry(ctx, v.env, input)
	if err != nil {
		return entry.Entry{}, err
	}
	v.insert(out.Entry)
	return out.Entry, nil
}

// Update stores changes to an entry and replaces it in the collection.
func (v *View) Update(ctx context.Context, input ops.UpdateEntryInput) (entry.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireAdmin(); err != nil {
		return entry.Entry{}, err
	}
	out, err := ops.UpdateEntry(ctx, v.env, input)
	if err != nil {
		return entry.Entry{}, err
	}
	v.remove(out.Entry.ID)
	v.insert(out.Entry)
	return out.Entry, nil
}

// Delete removes an entry from the store and then from the collection.
func (v *View) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireAdmin(); err != nil {
		return err
	}
	input := ops.DeleteEntryInput{ID: id}
	if i := v.index(id); i >= 0 {
		input.Type = string(v.all[i].Type)
	}
	if _, err := ops.DeleteEntry(ctx, v.env, input); err != nil {
		return err
	}
	v.remove(id)
	v.rederive()
	return nil
}

// Duplicate copies an entry and adds the copy to the collection.
func (v *View) Duplicate(ctx context.Context, id string) (entry.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.requireAdmin(); err != nil {
		return entry.Entry{}, err
	}
	input := ops.DuplicateEntryInput{ID: id}
	if i := v.index(id); i >= 0 {
		input.Type = string(v.all[i].Type)
	}
	out, err := ops.DuplicateEntry(ctx, v.env, input)
	if err != nil {
		return entry.Entry{}, err
	}
	v.insert(out.Entry)
	return out.Entry, nil
}

func (v *View) insert(e entry.Entry) {
	v.all = append(slices.Clone(v.all), e)
	catalog.Sort(v.all, v.env.Loader.SortKey())
	v.rederive()
}

func (v *View) remove(id string) {
	if i := v.index(id); i >= 0 {
		v.all = slices.Delete(slices.Clone(v.all), i, i+1)
	}
}
