package tags

import (
	"context"
	"log/slog"

	"github.com/hpungsan/tome/internal/i18n"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Tier names the source that answered a resolution.
type Tier string

const (
	TierKnown    Tier = "known"
	TierCache    Tier = "cache"
	TierFetched  Tier = "fetched"
	TierBuiltin  Tier = "builtin"
	TierIdentity Tier = "identity"
)

// Fetcher loads a single definition by code.
// It returns (nil, nil) when no definition exists.
type Fetcher interface {
	GetTagDefinitionByCode(ctx context.Context, code string) (*Definition, error)
}

// Resolver maps tag codes to labels.
type Resolver struct {
	cache   *Cache
	table   *Table
	fetcher Fetcher
	logger  *slog.Logger
	observe func(Tier)
	group   singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFetcher enables store lookups in ResolveContext.
func WithFetcher(f Fetcher) Option {
	return func(r *Resolver) { r.fetcher = f }
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithObserver registers a callback invoked with the answering tier.
func WithObserver(fn func(Tier)) Option {
	return func(r *Resolver) { r.observe = fn }
}

// NewResolver returns a resolver over cache and table.
// A nil cache or table is replaced with an empty one.
func NewResolver(cache *Cache, table *Table, opts ...Option) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if table == nil {
		table = NewTable(nil)
	}
	r := &Resolver{cache: cache, table: table, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// Table returns the resolver's built-in table.
func (r *Resolver) Table() *Table { return r.table }

// Preload fills the cache from a full definition listing.
func (r *Resolver) Preload(defs []Definition) { r.cache.Preload(defs) }

// Invalidate clears the cache after a definition changes.
func (r *Resolver) Invalidate() { r.cache.Invalidate() }

// Resolve returns the label for code without touching the store.
// Tiers: known, cache, built-in table, identity.
func (r *Resolver) Resolve(code string, lang i18n.Lang, known Known) string {
	return r.answer(r.lookup(code, lang, known))
}

func (r *Resolver) lookup(code string, lang i18n.Lang, known Known) (string, Tier) {
	if d, ok := known[code]; ok {
		if name := d.Name(lang); name != "" {
			return name, TierKnown
		}
	}
	if d, ok := r.cache.Get(code); ok {
		if name := d.Name(lang); name != "" {
			return name, TierCache
		}
	}
	if label, ok := r.table.Lookup(code, lang); ok {
		return label, TierBuiltin
	}
	return code, TierIdentity
}

// ResolveContext resolves code, fetching from the store on a cache miss.
// Tiers: cache, store, built-in table, identity. Fetch errors are logged
// and fall through.
func (r *Resolver) ResolveContext(ctx context.Context, code string, lang i18n.Lang) string {
	if d, ok := r.cache.Get(code); ok {
		if name := d.Name(lang); name != "" {
			return r.answer(name, TierCache)
		}
	}
	if d := r.fetch(ctx, code); d != nil {
		if name := d.Name(lang); name != "" {
			return r.answer(name, TierFetched)
		}
	}
	if label, ok := r.table.Lookup(code, lang); ok {
		return r.answer(label, TierBuiltin)
	}
	return r.answer(code, TierIdentity)
}

// ResolveAll resolves codes concurrently and returns code -> label.
func (r *Resolver) ResolveAll(ctx context.Context, codes []string, lang i18n.Lang) map[string]string {
	labels := make([]string, len(codes))
	var g errgroup.Group
	g.SetLimit(8)
	for i, code := range codes {
		g.Go(func() error {
			labels[i] = r.ResolveContext(ctx, code, lang)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]string, len(codes))
	for i, code := range codes {
		out[code] = labels[i]
	}
	return out
}

func (r *Resolver) fetch(ctx context.Context, code string) *Definition {
	if r.fetcher == nil || code == "" || r.cache.Missing(code) {
		return nil
	}
	v, err, _ := r.group.Do(code, func() (any, error) {
		d, err := r.fetcher.GetTagDefinitionByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if d == nil {
			r.cache.MarkMissing(code)
			return (*Definition)(nil), nil
		}
		r.cache.Put(*d)
		return d, nil
	})
	if err != nil {
		r.logger.Warn("tag definition fetch failed",
			slog.String("code", code),
			slog.String("error", err.Error()))
		return nil
	}
	d, _ := v.(*Definition)
	return d
}

func (r *Resolver) answer(label string, tier Tier) string {
	if r.observe != nil {
		r.observe(tier)
	}
	return label
}
